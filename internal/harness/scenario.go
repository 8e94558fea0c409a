package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fieldquery/internal/engine"
)

// Scenario defines a query conformance scenario: a schema, a database
// seed and a list of requests with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of the entity definitions (CUE, YAML or JSON).
	Schema string `yaml:"schema"`

	// Seed is an optional SQL script run on the empty database.
	Seed string `yaml:"seed,omitempty"`

	// Setup holds SQL statements run after the seed.
	Setup []string `yaml:"setup,omitempty"`

	// MaxPageSize caps request sizes when positive.
	MaxPageSize int `yaml:"max_page_size,omitempty"`

	// Parallel runs relation queries on a worker pool.
	Parallel bool `yaml:"parallel,omitempty"`

	// Requests are executed in order.
	Requests []RequestStep `yaml:"requests"`
}

// RequestStep is one search or count request.
type RequestStep struct {
	Name    string   `yaml:"name"`
	Entity  string   `yaml:"entity"`
	Columns []string `yaml:"columns,omitempty"`
	Filter  string   `yaml:"filter,omitempty"`
	Offset  int      `yaml:"offset,omitempty"`

	// Size is DefaultPageSize when omitted; an explicit 0 is sent as is.
	Size *int   `yaml:"size,omitempty"`
	Sort string `yaml:"sort,omitempty"`
	Desc bool   `yaml:"desc,omitempty"`

	// Count runs a count request instead of a search.
	Count bool `yaml:"count,omitempty"`

	// Expect is optional; without it the request only has to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a request.
type ExpectClause struct {
	// IDs are the identities of the returned objects, in order.
	IDs []any `yaml:"ids,omitempty"`

	// Count is the number of returned objects, or the count result.
	Count *int64 `yaml:"count,omitempty"`

	// Fields is the exact set of populated top-level fields per object.
	Fields []string `yaml:"fields,omitempty"`

	// Error is the expected error code, e.g. FILTER_SYNTAX.
	Error string `yaml:"error,omitempty"`
}

// DefaultPageSize is the size of requests that do not set one.
const DefaultPageSize = 20

// LoadScenario reads and parses a scenario YAML file. Relative schema and
// seed paths are resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative schema and seed paths against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "request:" vs "requests:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Schema = resolvePath(basePath, scenario.Schema)
	scenario.Seed = resolvePath(basePath, scenario.Seed)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

var knownCodes = map[string]bool{
	string(engine.CodeSchemaError):    true,
	string(engine.CodeFilterSyntax):   true,
	string(engine.CodeFilterType):     true,
	string(engine.CodeInvalidRequest): true,
	string(engine.CodeQueryExecution): true,
	string(engine.CodeInternal):       true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}
	if s.Seed != "" {
		if _, err := os.Stat(s.Seed); os.IsNotExist(err) {
			return fmt.Errorf("seed file not found: %s", s.Seed)
		}
	}
	if s.MaxPageSize < 0 {
		return fmt.Errorf("max_page_size must be non-negative")
	}
	if len(s.Requests) == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Requests))
	for i, r := range s.Requests {
		if r.Name == "" {
			return fmt.Errorf("requests[%d]: name is required", i)
		}
		if names[r.Name] {
			return fmt.Errorf("requests[%d]: duplicate name %q", i, r.Name)
		}
		names[r.Name] = true
		if r.Entity == "" {
			return fmt.Errorf("requests[%d]: entity is required", i)
		}
		if r.Expect == nil {
			continue
		}
		if r.Expect.Error != "" && !knownCodes[r.Expect.Error] {
			return fmt.Errorf("requests[%d].expect: unknown error code %q", i, r.Expect.Error)
		}
		if r.Count && (r.Expect.IDs != nil || r.Expect.Fields != nil) {
			return fmt.Errorf("requests[%d].expect: count requests only support count and error", i)
		}
	}
	return nil
}
