package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/fieldquery/internal/config"
	"github.com/roach88/fieldquery/internal/engine"
	"github.com/roach88/fieldquery/internal/metrics"
	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/schemasrc"
	"github.com/roach88/fieldquery/internal/store"
)

// app holds what the query commands share: configuration, catalog, store,
// metrics and the optional relation worker pool.
type app struct {
	cfg      *config.Config
	catalog  *schema.Catalog
	store    *store.Store
	pool     *ants.Pool
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger

	dumpMetrics bool
	errOut      io.Writer
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		cfg.Database.DSN = opts.Database
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if opts.Schema != "" {
		cfg.Schema = opts.Schema
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates a text logger on w. Verbose forces debug level.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadCatalog reads the schema source. Entities are materialized as
// records since the CLI has no Go types to bind.
func loadCatalog(path string) (*schema.Catalog, error) {
	defs, err := schemasrc.Load(path)
	if err != nil {
		return nil, err
	}
	return schema.New(defs)
}

// openApp opens everything a query command needs. Every failure is a
// command error.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger, err := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	logger.Debug("loading schema", "path", cfg.Schema)
	catalog, err := loadCatalog(cfg.Schema)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	logger.Debug("opening database", "driver", cfg.Database.Driver)
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	a := &app{
		cfg:         cfg,
		catalog:     catalog,
		store:       st,
		registry:    prometheus.NewRegistry(),
		logger:      logger,
		dumpMetrics: opts.Metrics,
		errOut:      cmd.ErrOrStderr(),
	}
	a.metrics = metrics.New(a.registry)

	if cfg.Search.ParallelRelations {
		pool, err := ants.NewPool(cfg.Search.Workers, ants.WithPanicHandler(func(v any) {
			logger.Error("relation query panicked", "panic", v)
		}))
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to create worker pool", err)
		}
		a.pool = pool
	}
	return a, nil
}

// repository creates the repository of an entity. An unknown entity is a
// command error.
func (a *app) repository(entity string) (*engine.Repository, error) {
	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
		engine.WithMaxPageSize(a.cfg.Search.MaxPageSize),
		engine.WithChunkSize(a.cfg.Search.ChunkSize),
	}
	if a.pool != nil {
		opts = append(opts, engine.WithPool(a.pool))
	}
	repo, err := engine.New(a.catalog, entity, a.store, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("unknown entity %q", entity), err)
	}
	return repo, nil
}

// Close releases the pool and the store, then prints metrics if asked.
func (a *app) Close() error {
	if a.pool != nil {
		a.pool.Release()
	}
	err := a.store.Close()
	if a.dumpMetrics {
		if werr := metrics.Write(a.errOut, a.registry); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// reportRequestError writes an engine error in the configured format and
// returns the matching exit error.
func reportRequestError(f *OutputFormatter, err error) error {
	code := engine.Classify(err)
	exit := WrapExitError(ExitFailure, "request failed", err)
	if code == engine.CodeInternal || code == engine.CodeSchemaError {
		exit.Code = ExitCommandError
	}
	if werr := f.Error(string(code), err.Error(), nil); werr != nil {
		return werr
	}
	exit.Reported = true
	return exit
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
