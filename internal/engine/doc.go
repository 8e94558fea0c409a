// Package engine executes searches: it validates a request, plans the
// requested columns, compiles the filter, runs the root query and one
// dependent query per requested relation, and hydrates the rows into
// entity objects.
//
// REQUEST FLOW:
//
//  1. Validate pagination and sort (InvalidRequestError).
//  2. plan.Build the column plan; unknown columns are dropped.
//  3. filter.CompileString the filter (SyntaxError, TypeError).
//  4. Root query: one page of the root entity, ordered by the sort column
//     then identity. DISTINCT when relations are requested or the filter
//     joins a to-many relation.
//  5. Relation queries: per requested relation, the target columns of all
//     root ids at once (chunked), joined back to the root through the
//     relation's link. Optionally concurrent on an ants pool.
//  6. Hydration: root objects are built through the catalog's accessors,
//     then relation rows are merged in plan order, upserting children by
//     identity.
//
// Every error except a store failure is raised before the first query.
// A store failure aborts the request with QueryExecutionError; no partial
// result is returned.
//
// A Repository is immutable after New. The identity index used for
// merging lives in one request and is discarded with it.
package engine
