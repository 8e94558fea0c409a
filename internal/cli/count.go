package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Filter string
}

// CountResult is the output of a count.
type CountResult struct {
	Entity string `json:"entity"`
	Count  int64  `json:"count"`
}

// RenderText prints the bare number.
func (r CountResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Count)
	return err
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <entity>",
		Short: "Count the objects matching a filter",
		Long: `Count the root objects matching a filter. Objects matching through
several related rows are counted once.

Example:
  fieldquery count User --filter 'roles.code==ADMIN'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "RSQL filter expression")

	return cmd
}

func runCount(opts *CountOptions, entity string, cmd *cobra.Command) (err error) {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	repo, err := a.repository(entity)
	if err != nil {
		return err
	}

	f := newFormatter(opts.RootOptions, cmd)
	n, err := repo.Count(commandContext(cmd), opts.Filter)
	if err != nil {
		return reportRequestError(f, err)
	}
	return f.Success(CountResult{Entity: entity, Count: n})
}
