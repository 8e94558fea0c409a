package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Empty values fall back
// to the configuration file and FIELDQUERY_* environment variables.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath string
	Database   string
	Driver     string
	Schema     string

	// Metrics prints the collected prometheus metrics to stderr when a
	// query command finishes.
	Metrics bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fieldquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fieldquery",
		Short: "Schema-driven field selection queries",
		Long: `fieldquery queries relational data through an entity schema.

Requests select any subset of an entity's fields, including fields of
related entities (roles.code), filter rows with RSQL expressions
(age>=18;roles.code==ADMIN) and return objects holding exactly the
requested fields.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ./fieldquery.yaml if present)")
	flags.StringVar(&opts.Database, "db", "", "database DSN (overrides database.dsn)")
	flags.StringVar(&opts.Driver, "driver", "", "database driver: sqlite3, sqlite or pgx (overrides database.driver)")
	flags.StringVar(&opts.Schema, "schema", "", "schema file or CUE package directory (overrides schema)")
	flags.BoolVar(&opts.Metrics, "metrics", false, "print query metrics to stderr on exit")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}
