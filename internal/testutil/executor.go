package testutil

import (
	"context"
	"sync"

	"github.com/roach88/fieldquery/internal/queryir"
)

type executor interface {
	Select(ctx context.Context, q queryir.Select) ([]queryir.Row, error)
	Count(ctx context.Context, q queryir.Count) (int64, error)
}

// CountingExecutor records every query passed to the wrapped executor.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CountingExecutor struct {
	Next executor

	mu      sync.Mutex
	queries []queryir.Query
}

// NewCountingExecutor wraps next.
func NewCountingExecutor(next executor) *CountingExecutor {
	return &CountingExecutor{Next: next}
}

// Select records q and delegates.
func (c *CountingExecutor) Select(ctx context.Context, q queryir.Select) ([]queryir.Row, error) {
	c.record(q)
	return c.Next.Select(ctx, q)
}

// Count records q and delegates.
func (c *CountingExecutor) Count(ctx context.Context, q queryir.Count) (int64, error) {
	c.record(q)
	return c.Next.Count(ctx, q)
}

func (c *CountingExecutor) record(q queryir.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, q)
}

// Queries returns a copy of the recorded queries in arrival order.
func (c *CountingExecutor) Queries() []queryir.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]queryir.Query(nil), c.queries...)
}

// Len returns how many queries were recorded.
func (c *CountingExecutor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// Reset forgets the recorded queries.
func (c *CountingExecutor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = nil
}
