package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/fieldquery/internal/engine"
)

const shellHelp = `Each line is a filter expression, e.g. age>=18;roles.code==ADMIN
  :all                   search without a filter
  :columns [a,b.c]       set the requested fields (no argument: all)
  :page <offset> <size>  set the page
  :sort [column] [desc]  set the ordering (no argument: identity)
  :count [filter]        count matching objects
  :help                  show this help
  :quit                  leave the shell`

var shellCommands = []string{":all", ":columns", ":page", ":sort", ":count", ":help", ":quit"}

// NewShellCommand creates the interactive shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell <entity>",
		Short: "Interactive filter shell",
		Long: `Start an interactive shell on one entity. Each line is run as a filter
with the session's columns, page and ordering; lines starting with ':' change
them. Type :help for the list.

Example:
  fieldquery shell User --db ./users.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShell(opts *RootOptions, entity string, cmd *cobra.Command) (err error) {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	repo, err := a.repository(entity)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, c := range shellCommands {
			if strings.HasPrefix(c, input) {
				out = append(out, c)
			}
		}
		return out
	})

	s := newShellSession(repo, newFormatter(opts, cmd), a.cfg.Search.DefaultPageSize)
	fmt.Fprintf(cmd.OutOrStdout(), "fieldquery shell on %s. Type :help for commands.\n", entity)

	ctx := commandContext(cmd)
	for {
		input, err := line.Prompt(entity + "> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		quit, err := s.handle(ctx, input)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		if quit {
			return nil
		}
	}
}

// shellSession is the state of one shell: the request parameters that
// lines starting with ':' change.
type shellSession struct {
	repo *engine.Repository
	out  *OutputFormatter

	columns []string
	offset  int
	size    int
	sort    string
	desc    bool
}

func newShellSession(repo *engine.Repository, out *OutputFormatter, size int) *shellSession {
	return &shellSession{repo: repo, out: out, size: size}
}

// handle runs one input line and reports whether the shell should exit.
// Request errors are printed and the session survives them; the returned
// error is a failed write to the output.
func (s *shellSession) handle(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, ":") {
		return false, s.search(ctx, input)
	}

	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":q", ":exit":
		return true, nil
	case ":help":
		_, err := fmt.Fprintln(s.out.Writer, shellHelp)
		return false, err
	case ":all":
		return false, s.search(ctx, "")
	case ":columns":
		s.columns = nil
		for _, c := range strings.Split(arg, ",") {
			if c = strings.TrimSpace(c); c != "" {
				s.columns = append(s.columns, c)
			}
		}
		return false, nil
	case ":page":
		return false, s.setPage(arg)
	case ":sort":
		return false, s.setSort(arg)
	case ":count":
		n, err := s.repo.Count(ctx, arg)
		if err != nil {
			return false, s.report(err)
		}
		return false, s.out.Success(CountResult{Entity: s.repo.Entity(), Count: n})
	default:
		return false, s.out.Error(ErrCodeCommand, fmt.Sprintf("unknown command %s (try :help)", name), nil)
	}
}

// report prints a request error under its engine code.
func (s *shellSession) report(err error) error {
	return s.out.Error(string(engine.Classify(err)), err.Error(), nil)
}

func (s *shellSession) setPage(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return s.out.Error(ErrCodeCommand, "usage: :page <offset> <size>", nil)
	}
	offset, err1 := strconv.Atoi(fields[0])
	size, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return s.out.Error(ErrCodeCommand, "offset and size must be integers", nil)
	}
	s.offset, s.size = offset, size
	return nil
}

func (s *shellSession) setSort(arg string) error {
	fields := strings.Fields(arg)
	s.sort, s.desc = "", false
	if len(fields) > 0 {
		s.sort = fields[0]
	}
	if len(fields) > 1 {
		dir, err := engine.ParseSortDirection(fields[1])
		if err != nil {
			return s.report(err)
		}
		s.desc = dir == engine.Descending
	}
	return nil
}

func (s *shellSession) search(ctx context.Context, filterText string) error {
	direction := engine.Ascending
	if s.desc {
		direction = engine.Descending
	}
	items, err := s.repo.Search(ctx, engine.Request{
		Columns:       s.columns,
		Filter:        filterText,
		Offset:        s.offset,
		Size:          s.size,
		SortColumn:    s.sort,
		SortDirection: direction,
	})
	if err != nil {
		return s.report(err)
	}
	return s.out.Success(SearchResult{Entity: s.repo.Entity(), Items: items})
}
