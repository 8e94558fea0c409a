package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/roach88/fieldquery/internal/filter"
	"github.com/roach88/fieldquery/internal/metrics"
	"github.com/roach88/fieldquery/internal/plan"
	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/value"
)

// Query kinds, used in logs, metrics and QueryExecutionError.
const (
	QueryRoot     = "root"
	QueryRelation = "relation"
	QueryCount    = "count"
)

// Repository searches one root entity.
//
// Thread-safety: a Repository holds no per-request state; Search and Count
// are safe for concurrent use if the Executor is.
type Repository struct {
	catalog *schema.Catalog
	entity  *schema.EntitySchema
	exec    Executor

	logger      *slog.Logger
	ids         IDGenerator
	metrics     *metrics.Metrics
	pool        *ants.Pool
	maxPageSize int
	chunkSize   int
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithIDGenerator sets the request id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) {
		r.ids = g
	}
}

// WithMetrics records query and request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

// WithPool runs the relation queries of a request concurrently on pool.
// The caller owns the pool. Merging still happens in plan order.
func WithPool(p *ants.Pool) Option {
	return func(r *Repository) {
		r.pool = p
	}
}

// WithMaxPageSize rejects requests for larger pages. 0 means no limit.
func WithMaxPageSize(n int) Option {
	return func(r *Repository) {
		r.maxPageSize = n
	}
}

// WithChunkSize splits the relation queries of pages larger than n root
// identities into several queries. 0, the default, sends one query per
// relation whatever the page size.
func WithChunkSize(n int) Option {
	return func(r *Repository) {
		r.chunkSize = max(n, 0)
	}
}

// New creates a Repository for entity.
func New(c *schema.Catalog, entity string, exec Executor, opts ...Option) (*Repository, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	r := &Repository{
		catalog: c,
		entity:  e,
		exec:    exec,
		logger:  slog.Default(),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Entity returns the root entity name.
func (r *Repository) Entity() string {
	return r.entity.Name
}

// Search returns one page of root objects with the requested columns
// populated. Each object is the instance type of the entity's binding
// (*schema.Record without one).
//
// Every error is detected before the first query runs except store
// failures, which abort the request with a *QueryExecutionError. The
// result is never partial.
//
// Query count is 1 + one per requested relation, more only when a chunk
// size is set and the page exceeds it; an empty page runs no relation query.
func (r *Repository) Search(ctx context.Context, req Request) (result []any, err error) {
	log := r.logger.With("request", r.ids.Generate(), "entity", r.entity.Name)
	defer func() { r.finish(log, "search", err) }()

	order, err := r.validate(req)
	if err != nil {
		return nil, err
	}
	p, err := plan.Build(r.catalog, r.entity.Name, req.Columns)
	if err != nil {
		return nil, err
	}
	pred, err := r.compileFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	log.Debug("search planned",
		"columns", p.Paths(),
		"filter", req.Filter,
		"offset", req.Offset,
		"size", req.Size,
	)

	rows, err := r.selectRows(ctx, log, QueryRoot, "", r.rootQuery(p, pred, order, req.Offset, req.Size))
	if err != nil {
		return nil, err
	}

	h := newHydrator(p)
	if err := h.roots(rows); err != nil {
		return nil, err
	}
	if len(h.objects) == 0 || len(p.Relations) == 0 {
		return h.objects, nil
	}

	batches, err := r.fetchRelations(ctx, log, p, h.ids)
	if err != nil {
		return nil, err
	}
	for i, rp := range p.Relations {
		if err := h.merge(rp, batches[i]); err != nil {
			return nil, err
		}
	}
	return h.objects, nil
}

// Count returns how many root objects match filterText.
func (r *Repository) Count(ctx context.Context, filterText string) (n int64, err error) {
	log := r.logger.With("request", r.ids.Generate(), "entity", r.entity.Name)
	defer func() { r.finish(log, "count", err) }()

	pred, err := r.compileFilter(filterText)
	if err != nil {
		return 0, err
	}
	q := r.countQuery(pred)

	start := time.Now()
	n, err = r.exec.Count(ctx, q)
	d := time.Since(start)
	r.metrics.ObserveQuery(QueryCount, d, err)
	if err != nil {
		log.Warn("query failed", "query", QueryCount, "duration", d, "error", err)
		return 0, &QueryExecutionError{Entity: r.entity.Name, Query: QueryCount, Err: err}
	}
	log.Debug("query executed", "query", QueryCount, "count", n, "duration", d)
	return n, nil
}

func (r *Repository) finish(log *slog.Logger, op string, err error) {
	code := Classify(err)
	r.metrics.ObserveRequest(r.entity.Name, string(code))
	if err != nil {
		log.Debug(op+" rejected", "code", code, "error", err)
	}
}

// compileFilter returns nil for blank filter text.
func (r *Repository) compileFilter(text string) (*filter.CompiledPredicate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return filter.CompileString(r.catalog, r.entity.Name, text)
}

// selectRows runs one select with timing, logging and metrics. Store
// errors become *QueryExecutionError.
func (r *Repository) selectRows(ctx context.Context, log *slog.Logger, kind, relation string, q queryir.Select) ([]queryir.Row, error) {
	start := time.Now()
	rows, err := r.exec.Select(ctx, q)
	d := time.Since(start)
	r.metrics.ObserveQuery(kind, d, err)
	if err != nil {
		log.Warn("query failed",
			"query", kind,
			"relation", relation,
			"duration", d,
			"error", err,
		)
		return nil, &QueryExecutionError{Entity: r.entity.Name, Query: kind, Relation: relation, Err: err}
	}
	log.Debug("query executed",
		"query", kind,
		"relation", relation,
		"rows", len(rows),
		"duration", d,
	)
	return rows, nil
}

// fetchRelations runs every relation query and returns the row batches in
// plan order. With a pool the queries run concurrently; the first error in
// plan order wins.
func (r *Repository) fetchRelations(ctx context.Context, log *slog.Logger, p *plan.ColumnPlan, ids []value.Value) ([][]queryir.Row, error) {
	batches := make([][]queryir.Row, len(p.Relations))

	if r.pool == nil || len(p.Relations) < 2 {
		for i, rp := range p.Relations {
			rows, err := r.fetchRelation(ctx, log, rp, ids)
			if err != nil {
				return nil, err
			}
			batches[i] = rows
		}
		return batches, nil
	}

	errs := make([]error, len(p.Relations))
	var wg sync.WaitGroup
	for i, rp := range p.Relations {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			batches[i], errs[i] = r.fetchRelation(ctx, log, rp, ids)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			errs[i] = &QueryExecutionError{
				Entity:   r.entity.Name,
				Query:    QueryRelation,
				Relation: rp.Attribute.Name,
				Err:      fmt.Errorf("submit to pool: %w", err),
			}
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return batches, nil
}

// fetchRelation runs the relation query once, or once per chunk of root ids
// when a chunk size is set.
func (r *Repository) fetchRelation(ctx context.Context, log *slog.Logger, rp plan.RelationPlan, ids []value.Value) ([]queryir.Row, error) {
	chunk := r.chunkSize
	if chunk == 0 || chunk > len(ids) {
		chunk = len(ids)
	}
	var all []queryir.Row
	for start := 0; start < len(ids); start += chunk {
		end := min(start+chunk, len(ids))
		rows, err := r.selectRows(ctx, log, QueryRelation, rp.Attribute.Name, r.relationQuery(rp, ids[start:end]))
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}
