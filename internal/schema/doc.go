// Package schema is the run-time catalog of entity types.
//
// A Catalog is built once from entity definitions (usually loaded by
// package schemasrc) and is read-only afterwards, so it can be shared by
// every request without locking.
//
// Each entity owns an ordered set of attributes. Scalar attributes carry a
// semantic kind (value.Kind); relational attributes carry a relation kind
// and the name of their target entity. Targets are resolved by name through
// the catalog, never held as owning pointers, so mutually referencing
// entities do not form ownership cycles.
//
// # Links
//
// How a relation is joined in storage is resolved once, at build time, into
// a Link. The resolution order for a relation R from E to T is:
//
//  1. R declares a join table.
//  2. R declares a foreign key column on E's table.
//  3. R names, via mappedBy, the owning attribute on T.
//  4. The inverse attribute on T (the first relation of T targeting E) owns
//     the join.
//
// # Accessors
//
// Field access goes through an accessor table built at catalog
// construction. Typed Go structs register a Binding made of Field,
// Nullable, ToOne and ToMany accessors; entities without a binding are
// materialized as *Record values.
package schema
