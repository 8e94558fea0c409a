package engine

import (
	"context"

	"github.com/roach88/fieldquery/internal/queryir"
)

// Executor runs queries against a store. Implemented by store.Store.
//
// Select returns rows in result order with every projected alias present
// (SQL NULL as value.Null). Count returns the number of distinct rows of
// the wrapped select.
//
// Thread-safety: must be safe for concurrent use when relation queries run
// on a pool (WithPool).
type Executor interface {
	Select(ctx context.Context, q queryir.Select) ([]queryir.Row, error)
	Count(ctx context.Context, q queryir.Count) (int64, error)
}
