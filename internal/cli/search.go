package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldquery/internal/engine"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Columns []string
	Filter  string
	Offset  int
	Size    int // search.default_page_size unless --size is given
	Sort    string
	Desc    bool
	Count   bool // also report the total number of matches
}

// SearchResult is the output of a search.
type SearchResult struct {
	Entity string `json:"entity"`
	Items  []any  `json:"items"`
	Total  *int64 `json:"total,omitempty"`
}

// RenderText prints one JSON object per line followed by a summary.
func (r SearchResult) RenderText(w io.Writer) error {
	for _, item := range r.Items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", r.Entity, err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("%d results", len(r.Items))
	if len(r.Items) == 1 {
		summary = "1 result"
	}
	if r.Total != nil {
		summary += fmt.Sprintf("\ntotal: %d", *r.Total)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <entity>",
		Short: "Fetch a page of objects with the requested fields",
		Long: `Fetch one page of an entity's objects populated with exactly the
requested fields. Columns name root attributes (name), relations (roles,
meaning all of the target's own fields) or relation fields (roles.code).
Without --columns every field is returned.

Exit codes:
  0 - Success
  1 - Request rejected (bad filter, invalid paging) or query failed
  2 - Command error (config, schema, database, unknown entity)

Examples:
  fieldquery search User --columns name,roles.code --filter 'roles.code==ADMIN'
  fieldquery search User --filter 'age>=18;country=in=(US,UK)' --sort age --desc
  fieldquery search Ticket --columns title,user.name --size 5 --offset 10 --count`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "comma-separated field paths (default all)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "RSQL filter expression")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of objects to skip")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "page size (default search.default_page_size)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "root attribute to sort by (default identity)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "also report the total number of matches")

	return cmd
}

func runSearch(opts *SearchOptions, entity string, cmd *cobra.Command) (err error) {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	repo, err := a.repository(entity)
	if err != nil {
		return err
	}

	size := opts.Size
	if !cmd.Flags().Changed("size") {
		size = a.cfg.Search.DefaultPageSize
	}
	direction := engine.Ascending
	if opts.Desc {
		direction = engine.Descending
	}

	f := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)
	items, err := repo.Search(ctx, engine.Request{
		Columns:       opts.Columns,
		Filter:        opts.Filter,
		Offset:        opts.Offset,
		Size:          size,
		SortColumn:    opts.Sort,
		SortDirection: direction,
	})
	if err != nil {
		return reportRequestError(f, err)
	}

	result := SearchResult{Entity: entity, Items: items}
	if opts.Count {
		total, err := repo.Count(ctx, opts.Filter)
		if err != nil {
			return reportRequestError(f, err)
		}
		result.Total = &total
	}
	return f.Success(result)
}

// closeApp closes a and keeps the first error.
func closeApp(a *app, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = WrapExitError(ExitCommandError, "failed to close", cerr)
	}
}

// commandContext returns the command's context, or a background context
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
