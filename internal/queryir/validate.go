package queryir

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationResult lists structural problems of a query.
type ValidationResult struct {
	// IsValid is true when Problems is empty.
	IsValid bool

	// Problems describes each defect found, in traversal order.
	Problems []string
}

// Err returns nil for a valid query, or one error listing every problem.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return errors.New("invalid query: " + strings.Join(r.Problems, "; "))
}

// Validate checks that a query is well formed: it projects at least one
// column, aliases are unique, every column reference names a table alias
// in scope, joins have conditions, and pagination is not negative.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{}
	v.validateQuery(query)
	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
	aliases  map[string]bool
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Count:
		v.validateSelect(query.Select)
	case *Count:
		v.validateSelect(query.Select)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.aliases = map[string]bool{}

	if sel.From.Name == "" || sel.From.Alias == "" {
		v.addProblem("from table needs a name and an alias")
	}
	v.aliases[sel.From.Alias] = true

	for _, j := range sel.Joins {
		if j.Table.Name == "" || j.Table.Alias == "" {
			v.addProblem("joined table needs a name and an alias")
		}
		if v.aliases[j.Table.Alias] {
			v.addProblem("duplicate table alias %q", j.Table.Alias)
		}
		v.aliases[j.Table.Alias] = true
		if len(j.On) == 0 {
			v.addProblem("join of %q has no condition", j.Table.Alias)
		}
		for _, on := range j.On {
			v.checkRef(on.Left)
			v.checkRef(on.Right)
		}
	}

	if len(sel.Columns) == 0 {
		v.addProblem("no projected columns")
	}
	seen := map[string]bool{}
	for _, c := range sel.Columns {
		v.checkRef(c.Ref)
		if c.Alias == "" {
			v.addProblem("column %s has no alias", c.Ref)
		}
		if seen[c.Alias] {
			v.addProblem("duplicate column alias %q", c.Alias)
		}
		seen[c.Alias] = true
	}

	for _, o := range sel.OrderBy {
		v.checkRef(o.Column)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) checkRef(r ColumnRef) {
	if r.Name == "" {
		v.addProblem("column reference without a name")
	}
	if !v.aliases[r.Table] {
		v.addProblem("column %s refers to unknown table alias %q", r, r.Table)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Compare:
		v.checkRef(pred.Column)
		if pred.Value == nil {
			v.addProblem("comparison on %s has no value", pred.Column)
		}
	case In:
		v.checkRef(pred.Column)
	case Like:
		v.checkRef(pred.Column)
	case IsNull:
		v.checkRef(pred.Column)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}
