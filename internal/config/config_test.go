package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "fieldquery.db", cfg.Database.DSN)
	assert.Equal(t, "schema.cue", cfg.Schema)
	assert.Equal(t, 20, cfg.Search.DefaultPageSize)
	assert.Equal(t, 1000, cfg.Search.MaxPageSize)
	assert.False(t, cfg.Search.ParallelRelations)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 0, cfg.Search.ChunkSize)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: /tmp/users.db
search:
  default_page_size: 50
  parallel_relations: true
log:
  level: debug
`), 0o644))

	t.Setenv("FIELDQUERY_DATABASE_DSN", "/tmp/override.db")
	t.Setenv("FIELDQUERY_SEARCH_MAX_PAGE_SIZE", "200")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/override.db", cfg.Database.DSN)
	assert.Equal(t, 50, cfg.Search.DefaultPageSize)
	assert.Equal(t, 200, cfg.Search.MaxPageSize)
	assert.True(t, cfg.Search.ParallelRelations)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fieldquery.yaml"), []byte("schema: entities.yaml\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "entities.yaml", cfg.Schema)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite3", DSN: "x.db"},
			Search:   SearchConfig{DefaultPageSize: 20, MaxPageSize: 100, Workers: 4},
			Log:      LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"zero page size", func(c *Config) { c.Search.DefaultPageSize = 0 }},
		{"default above max", func(c *Config) { c.Search.DefaultPageSize = 500 }},
		{"parallel without workers", func(c *Config) { c.Search.ParallelRelations = true; c.Search.Workers = 0 }},
		{"negative chunk size", func(c *Config) { c.Search.ChunkSize = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := base()
	assert.NoError(t, c.Validate())
	c.Database.Driver = "pgx"
	c.Search.MaxPageSize = 0
	assert.NoError(t, c.Validate())
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
