// Package store executes query IR against a relational database through
// database/sql.
//
// Three drivers are registered:
//   - "sqlite3" (github.com/mattn/go-sqlite3), the default
//   - "sqlite" (modernc.org/sqlite), cgo-free
//   - "pgx" (github.com/jackc/pgx/v5/stdlib), Postgres
//
// The driver name selects the SQL dialect. Queries are compiled by package
// querysql and validated by queryir.Validate before they reach the
// database; values are always bound as parameters.
//
// # SQLite Configuration
//
//   - WAL mode for file databases
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - a single connection, so ":memory:" databases are shared
//
// Store is safe for concurrent use; concurrent queries on SQLite are
// serialized by the single connection.
package store
