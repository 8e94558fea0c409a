package schemasrc

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fieldquery/internal/schema"
)

//go:embed entities.schema.json
var entitiesSchema string

var (
	compiledOnce   sync.Once
	compiledSchema *gojsonschema.Schema
	compiledErr    error
)

func documentSchema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiledSchema, compiledErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(entitiesSchema))
	})
	return compiledSchema, compiledErr
}

type document struct {
	Entities []schema.EntityDef `yaml:"entities"`
}

// LoadYAML reads entity definitions from a YAML or JSON file.
func LoadYAML(path string) ([]schema.EntityDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema source: %w", err)
	}
	defs, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseYAML validates a YAML or JSON document against the entity document
// schema and decodes it.
func ParseYAML(data []byte) ([]schema.EntityDef, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("parsing document: %v", err)}
	}

	s, err := documentSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("validating document: %v", err)}
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, &LoadError{Field: "entities", Message: "document invalid: " + strings.Join(msgs, "; ")}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("decoding document: %v", err)}
	}
	return doc.Entities, nil
}
