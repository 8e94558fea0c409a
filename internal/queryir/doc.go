// Package queryir describes the queries the engine sends to a store.
//
// The query IR is the boundary between the request planner and the storage
// backend. The planner never produces SQL text; it produces a Select or a
// Count, and a backend (package querysql) turns that into its own dialect.
//
//	[planner] → [Query IR] → [SQL backend] → [store]
//
// SHAPE:
//
// A Select reads one root table under an alias, projects explicit columns
// under explicit result aliases, and may add inner or left joins. Every
// column reference is qualified by a table alias, so joined tables never
// collide. Filters are trees of Compare, In, Like, IsNull, And and Or.
//
// A Count wraps a Select and counts its distinct projected rows; ordering
// and pagination of the wrapped Select are ignored.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed with marker methods, so backends can
// switch exhaustively:
//
//	switch p := pred.(type) {
//	case Compare:
//	case In:
//	case Like:
//	case IsNull:
//	case And:
//	case Or:
//	}
//
// VALUES:
//
// Literals are value.Value, never raw Go values. A backend decides how each
// kind is passed to its driver; literals are always parameterized.
//
// RESULTS:
//
// Stores return Rows keyed by column alias. Every projected alias is
// present in every row; SQL NULL is value.Null.
package queryir
