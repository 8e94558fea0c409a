package schemasrc

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/fieldquery/internal/schema"
)

// LoadCUE reads entity definitions from a .cue file or a directory holding
// one CUE package.
func LoadCUE(path string) ([]schema.EntityDef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema source: %w", err)
	}

	ctx := cuecontext.New()
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schema source: %w", err)
		}
		return ParseCUE(ctx.CompileBytes(data, cue.Filename(path)))
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no CUE instances in %s", path)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	return ParseCUE(ctx.BuildInstance(inst))
}

// CompileCUE parses CUE source text. filename is used in error positions.
func CompileCUE(src, filename string) ([]schema.EntityDef, error) {
	ctx := cuecontext.New()
	return ParseCUE(ctx.CompileString(src, cue.Filename(filename)))
}

// ParseCUE extracts entity definitions from the "entity" struct of v.
func ParseCUE(v cue.Value) ([]schema.EntityDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &LoadError{Field: "entity", Message: "no entities defined", Pos: v.Pos()}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []schema.EntityDef
	for iter.Next() {
		def, err := parseEntity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &LoadError{Field: "entity", Message: "no entities defined", Pos: entitiesVal.Pos()}
	}
	return defs, nil
}

func parseEntity(name string, v cue.Value) (schema.EntityDef, error) {
	def := schema.EntityDef{Name: name}

	var err error
	if def.Table, err = optionalString(v, "table"); err != nil {
		return def, err
	}
	if def.Identity, err = optionalString(v, "identity"); err != nil {
		return def, err
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return def, &LoadError{
			Field:   fmt.Sprintf("entity.%s.attributes", name),
			Message: "attributes are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return def, formatCUEError(err)
	}
	for iter.Next() {
		attr, err := parseAttribute(iter.Label(), iter.Value())
		if err != nil {
			return def, err
		}
		def.Attributes = append(def.Attributes, attr)
	}
	return def, nil
}

func parseAttribute(name string, v cue.Value) (schema.AttributeDef, error) {
	attr := schema.AttributeDef{Name: name}

	// Shorthand: name: "integer"
	if kind, err := v.String(); err == nil {
		attr.Type = kind
		return attr, nil
	}
	if v.IncompleteKind() != cue.StructKind {
		return attr, &LoadError{
			Field:   name,
			Message: "attribute must be a kind name or a struct",
			Pos:     v.Pos(),
		}
	}

	strs := []struct {
		field string
		dst   *string
	}{
		{"column", &attr.Column},
		{"type", &attr.Type},
		{"relation", &attr.Relation},
		{"target", &attr.Target},
		{"foreignKey", &attr.ForeignKey},
		{"mappedBy", &attr.MappedBy},
	}
	for _, s := range strs {
		str, err := optionalString(v, s.field)
		if err != nil {
			return attr, err
		}
		*s.dst = str
	}

	if idVal := v.LookupPath(cue.ParsePath("identity")); idVal.Exists() {
		b, err := idVal.Bool()
		if err != nil {
			return attr, formatCUEError(err)
		}
		attr.Identity = b
	}

	if jtVal := v.LookupPath(cue.ParsePath("joinTable")); jtVal.Exists() {
		var jt schema.JoinTable
		if err := jtVal.Decode(&jt); err != nil {
			return attr, formatCUEError(err)
		}
		attr.JoinTable = &jt
	}
	return attr, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// Load reads entity definitions from path, choosing the format by
// extension. Directories are read as CUE packages.
func Load(path string) ([]schema.EntityDef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema source: %w", err)
	}
	if info.IsDir() {
		return LoadCUE(path)
	}
	switch filepath.Ext(path) {
	case ".cue":
		return LoadCUE(path)
	case ".yaml", ".yml", ".json":
		return LoadYAML(path)
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unsupported schema source %s", path)}
	}
}
