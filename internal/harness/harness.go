package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/roach88/fieldquery/internal/engine"
	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/schemasrc"
	"github.com/roach88/fieldquery/internal/store"
	"github.com/roach88/fieldquery/internal/testutil"
)

// poolSize bounds relation queries of parallel scenarios.
const poolSize = 4

// Harness is the scenario execution engine. It owns one database and one
// repository per entity for the duration of a scenario.
type Harness struct {
	catalog *schema.Catalog
	store   *store.Store
	pool    *ants.Pool
	logger  *slog.Logger
	repos   map[string]*engine.Repository

	maxPageSize int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Load the schema and build a record catalog
//  2. Create the database and run the seed and setup statements
//  3. Execute each request and evaluate its expectations
//
// An error is returned only when the scenario cannot be executed at all;
// failed expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	defs, err := schemasrc.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	catalog, err := schema.New(defs)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	st, err := store.Open(store.DefaultDriver, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if scenario.Seed != "" {
		if err := st.ExecFile(ctx, scenario.Seed); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}
	for i, stmt := range scenario.Setup {
		if err := st.ExecScript(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to execute setup[%d]: %w", i, err)
		}
	}

	h := &Harness{
		catalog:     catalog,
		store:       st,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		repos:       make(map[string]*engine.Repository),
		maxPageSize: scenario.MaxPageSize,
	}
	if scenario.Parallel {
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create worker pool: %w", err)
		}
		defer pool.Release()
		h.pool = pool
	}

	result := NewResult()
	for i, step := range scenario.Requests {
		resp := h.execute(ctx, step)
		result.Responses = append(result.Responses, resp)
		for _, msg := range EvaluateExpectation(step, resp) {
			result.AddError(fmt.Sprintf("requests[%d] %s: %s", i, step.Name, msg))
		}
	}
	return result, nil
}

// repository returns the repository of an entity, creating it on first use.
func (h *Harness) repository(entity string) (*engine.Repository, error) {
	if repo, ok := h.repos[entity]; ok {
		return repo, nil
	}
	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator("harness")),
	}
	if h.maxPageSize > 0 {
		opts = append(opts, engine.WithMaxPageSize(h.maxPageSize))
	}
	if h.pool != nil {
		opts = append(opts, engine.WithPool(h.pool))
	}
	repo, err := engine.New(h.catalog, entity, h.store, opts...)
	if err != nil {
		return nil, err
	}
	h.repos[entity] = repo
	return repo, nil
}

// execute runs one request. Failures are captured in the response.
func (h *Harness) execute(ctx context.Context, step RequestStep) Response {
	resp := Response{Request: step.Name, Entity: step.Entity}

	repo, err := h.repository(step.Entity)
	if err != nil {
		resp.Error = responseError(err)
		return resp
	}

	if step.Count {
		n, err := repo.Count(ctx, step.Filter)
		if err != nil {
			resp.Error = responseError(err)
			return resp
		}
		resp.Count = &n
		return resp
	}

	size := DefaultPageSize
	if step.Size != nil {
		size = *step.Size
	}
	direction := engine.Ascending
	if step.Desc {
		direction = engine.Descending
	}
	items, err := repo.Search(ctx, engine.Request{
		Columns:       step.Columns,
		Filter:        step.Filter,
		Offset:        step.Offset,
		Size:          size,
		SortColumn:    step.Sort,
		SortDirection: direction,
	})
	if err != nil {
		resp.Error = responseError(err)
		return resp
	}

	ids, err := h.identities(step.Entity, items)
	if err != nil {
		resp.Error = responseError(err)
		return resp
	}
	n := int64(len(items))
	resp.Count = &n
	resp.Items = items
	resp.IDs = ids
	return resp
}

func (h *Harness) identities(entity string, items []any) ([]any, error) {
	id, err := h.catalog.IdentityAttribute(entity)
	if err != nil {
		return nil, err
	}
	accessors, err := h.catalog.Accessors(entity)
	if err != nil {
		return nil, err
	}
	get := accessors[id.Name].Get
	ids := make([]any, len(items))
	for i, item := range items {
		ids[i] = get(item)
	}
	return ids, nil
}

func responseError(err error) *ResponseError {
	return &ResponseError{Code: string(engine.Classify(err)), Message: err.Error()}
}
