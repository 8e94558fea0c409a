package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldquery/internal/schema"
)

// EntityInfo describes one entity of the catalog.
type EntityInfo struct {
	Name       string          `json:"name"`
	Table      string          `json:"table"`
	Attributes []AttributeInfo `json:"attributes"`
}

// AttributeInfo describes one attribute.
type AttributeInfo struct {
	Name     string `json:"name"`
	Column   string `json:"column,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Identity bool   `json:"identity,omitempty"`
	Relation string `json:"relation,omitempty"`
	Target   string `json:"target,omitempty"`
}

// SchemaInfo is the output of the schema command.
type SchemaInfo struct {
	Entities []EntityInfo `json:"entities"`
}

// RenderText prints one block per entity.
func (s SchemaInfo) RenderText(w io.Writer) error {
	for i, e := range s.Entities {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", e.Name, e.Table)
		for _, a := range e.Attributes {
			if a.Relation != "" {
				fmt.Fprintf(w, "  %-12s %s -> %s\n", a.Name, a.Relation, a.Target)
				continue
			}
			line := fmt.Sprintf("  %-12s %-10s %s", a.Name, a.Kind, a.Column)
			if a.Identity {
				line += " [identity]"
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

// describeCatalog converts the catalog for output.
func describeCatalog(c *schema.Catalog) SchemaInfo {
	info := SchemaInfo{Entities: []EntityInfo{}}
	for _, e := range c.Entities() {
		ei := EntityInfo{Name: e.Name, Table: e.Table}
		for _, a := range e.Attributes() {
			ai := AttributeInfo{Name: a.Name, Identity: a.Identity}
			if a.IsRelation() {
				ai.Relation = a.Relation.String()
				ai.Target = a.Target
			} else {
				ai.Column = a.Column
				ai.Kind = a.Kind.String()
			}
			ei.Attributes = append(ei.Attributes, ai)
		}
		info.Entities = append(info.Entities, ei)
	}
	return info
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the entity catalog",
		Long: `Load and validate the schema source, then print every entity with its
attributes. The database is not opened.

Example:
  fieldquery schema --schema ./schema.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd)
		},
	}
	return cmd
}

func runSchema(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	catalog, err := loadCatalog(cfg.Schema)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load schema", err)
	}
	return newFormatter(opts, cmd).Success(describeCatalog(catalog))
}
