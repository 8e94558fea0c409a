// Package config loads fieldquery settings from defaults, an optional YAML
// file and FIELDQUERY_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/fieldquery/internal/querysql"
)

// EnvPrefix prefixes environment overrides: FIELDQUERY_DATABASE_DSN sets
// database.dsn.
const EnvPrefix = "FIELDQUERY"

// Config is the full settings tree.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Schema   string         `mapstructure:"schema"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SearchConfig tunes the engine.
type SearchConfig struct {
	DefaultPageSize   int  `mapstructure:"default_page_size"`
	MaxPageSize       int  `mapstructure:"max_page_size"`
	ParallelRelations bool `mapstructure:"parallel_relations"`
	Workers           int  `mapstructure:"workers"`
	// ChunkSize splits relation queries of larger pages; 0 never splits.
	ChunkSize int `mapstructure:"chunk_size"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"database.driver":           "sqlite3",
	"database.dsn":              "fieldquery.db",
	"schema":                    "schema.cue",
	"search.default_page_size":  20,
	"search.max_page_size":      1000,
	"search.parallel_relations": false,
	"search.workers":            4,
	"search.chunk_size":         0,
	"log.level":                 "info",
}

// Load reads the configuration. path names a YAML file; when empty,
// fieldquery.yaml in the working directory is read if it exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("fieldquery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if _, err := querysql.DialectFor(c.Database.Driver); err != nil {
		return fmt.Errorf("config: database.driver: %w", err)
	}
	if c.Search.DefaultPageSize <= 0 {
		return fmt.Errorf("config: search.default_page_size must be positive, got %d", c.Search.DefaultPageSize)
	}
	if c.Search.MaxPageSize > 0 && c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("config: search.default_page_size %d exceeds search.max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.ChunkSize < 0 {
		return fmt.Errorf("config: search.chunk_size must not be negative, got %d", c.Search.ChunkSize)
	}
	if c.Search.ParallelRelations && c.Search.Workers <= 0 {
		return fmt.Errorf("config: search.workers must be positive with parallel relations, got %d", c.Search.Workers)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}
