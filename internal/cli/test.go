package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldquery/internal/harness"
)

// ErrCodeTestFailed is the response code of a suite with failed scenarios.
const ErrCodeTestFailed = "TEST_FAILED"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden snapshots instead of comparing
	Filter string // glob matched against scenario file names
}

// ScenarioOutcome is the verdict on one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult aggregates the outcomes of a scenarios directory.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

func (s *SuiteResult) add(o ScenarioOutcome) {
	s.Scenarios = append(s.Scenarios, o)
	s.Total++
	if o.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
}

// RenderText prints a mark per scenario followed by the summary line.
func (s SuiteResult) RenderText(w io.Writer) error {
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "No scenarios found.")
		return err
	}
	var buf bytes.Buffer
	for _, o := range s.Scenarios {
		mark := "✓"
		if !o.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&buf, "%s %s\n", mark, o.Name)
		for _, e := range o.Errors {
			fmt.Fprintf(&buf, "  %s\n", e)
		}
	}
	fmt.Fprintf(&buf, "\nTest Summary: %d passed, %d failed, %d total\n", s.Passed, s.Failed, s.Total)
	if s.Failed == 0 {
		buf.WriteString("✓ All scenarios passed\n")
	}
	_, err := buf.WriteTo(w)
	return err
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run query scenarios",
		Long: `Run every YAML scenario under <scenarios-dir>.

Each scenario seeds a fresh in-memory database, runs its requests and checks
their expectations. When <scenarios-dir>/golden/<scenario>.golden exists the
responses must also match it; --update rewrites the snapshots.

Exit codes:
  0 - Every scenario passed
  1 - At least one scenario failed
  2 - Command error (missing directory, bad filter)

Examples:
  fieldquery test ./scenarios
  fieldquery test ./scenarios --filter "user-*"
  fieldquery test ./scenarios --update --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden snapshots")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files matching this glob")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	paths, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list scenarios", err)
	}

	suite := SuiteResult{Scenarios: make([]ScenarioOutcome, 0, len(paths))}
	for _, path := range paths {
		suite.add(runScenarioFile(path, opts.Update))
	}

	f := newFormatter(opts.RootOptions, cmd)
	if suite.Failed == 0 {
		return f.Success(suite)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", suite.Failed)
	if f.Format == "json" {
		// Failures carry the full suite, which Error cannot.
		err = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Data:   suite,
			Error:  &CLIError{Code: ErrCodeTestFailed, Message: msg},
		})
	} else {
		err = suite.RenderText(f.Writer)
	}
	if err != nil {
		return err
	}
	exit := NewExitError(ExitFailure, msg)
	exit.Reported = true
	return exit
}

// findScenarioFiles walks dir for .yaml and .yml files. A non-empty filter
// is matched against the file name without its extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern %q: %w", filter, err)
			}
			if !ok {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// runScenarioFile runs one scenario, then updates or checks its snapshot.
// Every failure ends up in the outcome.
func runScenarioFile(path string, update bool) ScenarioOutcome {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioOutcome{
			Name:   filepath.Base(path),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}
	failed := func(format string, args ...any) ScenarioOutcome {
		return ScenarioOutcome{Name: scenario.Name, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return failed("execution failed: %v", err)
	}
	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return failed("%v", err)
	}

	golden := goldenFilePath(path)
	switch existing, err := os.ReadFile(golden); {
	case update:
		if err := os.MkdirAll(filepath.Dir(golden), 0755); err != nil {
			return failed("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(golden, snapshot, 0644); err != nil {
			return failed("failed to write golden file: %v", err)
		}
	case err == nil:
		if !bytes.Equal(existing, snapshot) {
			result.AddError("responses do not match golden file (run with --update to regenerate)")
		}
	case !os.IsNotExist(err):
		return failed("failed to read golden file: %v", err)
	}

	return ScenarioOutcome{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioPath string) string {
	name := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	return filepath.Join(filepath.Dir(scenarioPath), "golden", name+".golden")
}
