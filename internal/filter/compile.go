package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/fieldquery/internal/plan"
	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/value"
)

// CompiledPredicate is a filter resolved against one root entity. It holds
// no query state; Bind may be called on any number of queries.
type CompiledPredicate struct {
	entity *schema.EntitySchema
	root   term
	source string
}

// term is a resolved comparison or group.
type term interface {
	term() // Marker method - seals interface to this package
}

type comparisonTerm struct {
	relation *schema.Attribute // nil for root attributes
	target   *schema.EntitySchema
	attr     *schema.Attribute
	op       Operator
	values   []value.Value
	pattern  string // LIKE pattern when the argument carries a wildcard
	null     bool   // =isnull= argument
}

func (comparisonTerm) term() {}

type groupTerm struct {
	op       LogicalOp
	children []term
}

func (groupTerm) term() {}

// CompileString parses input and compiles it against entity.
func CompileString(c *schema.Catalog, entity, input string) (*CompiledPredicate, error) {
	n, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Compile(c, entity, n)
}

// Compile resolves every selector of n against entity and coerces every
// argument to its attribute's kind.
func Compile(c *schema.Catalog, entity string, n Node) (*CompiledPredicate, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &SyntaxError{Pos: -1, Message: "empty filter"}
	}

	comp := &compiler{catalog: c, entity: e, source: n.String()}
	root, err := comp.compile(n)
	if err != nil {
		return nil, err
	}
	return &CompiledPredicate{entity: e, root: root, source: comp.source}, nil
}

type compiler struct {
	catalog *schema.Catalog
	entity  *schema.EntitySchema
	source  string
}

func (c *compiler) compile(n Node) (term, error) {
	switch n := n.(type) {
	case Comparison:
		return c.comparison(n)
	case Logical:
		if len(n.Children) == 0 {
			return nil, &SyntaxError{Input: c.source, Pos: -1, Message: fmt.Sprintf("%s group has no operands", n.Op)}
		}
		g := groupTerm{op: n.Op, children: make([]term, 0, len(n.Children))}
		for _, child := range n.Children {
			t, err := c.compile(child)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, t)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("filter: unexpected node %T", n)
	}
}

func (c *compiler) comparison(n Comparison) (term, error) {
	t, err := c.resolve(n)
	if err != nil {
		return nil, err
	}
	t.op = n.Operator

	if len(n.Args) == 0 || (!n.Operator.multiValued() && len(n.Args) != 1) {
		return nil, &SyntaxError{
			Input:   c.source,
			Pos:     n.Pos,
			Message: fmt.Sprintf("operator %s takes %s, got %d", n.Operator, arity(n.Operator), len(n.Args)),
		}
	}

	kind := t.attr.Kind
	if n.Operator.ranged() && !kind.Ordered() {
		return nil, &TypeError{
			Selector: n.Selector,
			Kind:     kind,
			Arg:      n.Args[0],
			Message:  fmt.Sprintf("operator %s needs an ordered kind", n.Operator),
		}
	}

	if n.Operator == OpIsNull {
		v, err := value.Parse(value.KindBoolean, n.Args[0])
		if err != nil {
			return nil, &TypeError{
				Selector: n.Selector,
				Kind:     kind,
				Arg:      n.Args[0],
				Message:  "=isnull= takes true or false",
				Err:      err,
			}
		}
		t.null = bool(v.(value.Bool))
		return t, nil
	}

	for _, arg := range n.Args {
		v, err := value.Parse(kind, arg)
		if err != nil {
			return nil, &TypeError{
				Selector: n.Selector,
				Kind:     kind,
				Arg:      arg,
				Message:  "argument does not match the attribute kind",
				Err:      err,
			}
		}
		t.values = append(t.values, v)
	}

	if kind == value.KindText && (n.Operator == OpEqual || n.Operator == OpNotEqual) {
		if s := string(t.values[0].(value.Text)); strings.Contains(s, "*") {
			t.pattern = likePattern(s)
		}
	}
	return t, nil
}

func arity(op Operator) string {
	if op.multiValued() {
		return "at least one argument"
	}
	return "exactly one argument"
}

// resolve maps a selector to its attribute, walking one relation hop.
func (c *compiler) resolve(n Comparison) (comparisonTerm, error) {
	path, ok := plan.ParsePath(n.Selector)
	if !ok {
		return comparisonTerm{}, &SyntaxError{Input: c.source, Pos: n.Pos, Message: fmt.Sprintf("invalid selector %q", n.Selector)}
	}

	switch p := path.(type) {
	case plan.RootColumn:
		attr, ok := c.entity.Attribute(p.Name)
		if !ok {
			return comparisonTerm{}, c.unknown(n, c.entity.Name, p.Name)
		}
		if attr.IsRelation() {
			return comparisonTerm{}, &SyntaxError{
				Input:   c.source,
				Pos:     n.Pos,
				Message: fmt.Sprintf("selector %q names a relation; use %s.<attribute>", n.Selector, p.Name),
			}
		}
		return comparisonTerm{attr: attr}, nil

	case plan.RelationColumn:
		rel, ok := c.entity.Attribute(p.Relation)
		if !ok {
			return comparisonTerm{}, c.unknown(n, c.entity.Name, p.Relation)
		}
		if !rel.IsRelation() {
			return comparisonTerm{}, &SyntaxError{
				Input:   c.source,
				Pos:     n.Pos,
				Message: fmt.Sprintf("selector %q: %s is not a relation", n.Selector, p.Relation),
			}
		}
		target, err := c.catalog.Entity(rel.Target)
		if err != nil {
			return comparisonTerm{}, &SyntaxError{Input: c.source, Pos: n.Pos, Message: fmt.Sprintf("unknown selector %q", n.Selector), Err: err}
		}
		attr, ok := target.Attribute(p.Name)
		if !ok {
			return comparisonTerm{}, c.unknown(n, target.Name, p.Name)
		}
		if attr.IsRelation() {
			return comparisonTerm{}, &SyntaxError{
				Input:   c.source,
				Pos:     n.Pos,
				Message: fmt.Sprintf("selector %q reaches past one relation", n.Selector),
			}
		}
		return comparisonTerm{relation: rel, target: target, attr: attr}, nil
	}
	return comparisonTerm{}, fmt.Errorf("filter: unexpected path %T", path)
}

func (c *compiler) unknown(n Comparison, entity, attr string) *SyntaxError {
	return &SyntaxError{
		Input:   c.source,
		Pos:     n.Pos,
		Message: fmt.Sprintf("unknown selector %q", n.Selector),
		Err:     &schema.Error{Entity: entity, Attribute: attr, Message: "unknown attribute"},
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern escapes LIKE metacharacters and turns '*' into '%'.
func likePattern(s string) string {
	return strings.ReplaceAll(likeEscaper.Replace(s), "*", "%")
}

// Entity returns the root entity the predicate was compiled for.
func (p *CompiledPredicate) Entity() string {
	return p.entity.Name
}

func (p *CompiledPredicate) String() string {
	return p.source
}

// JoinsToMany reports whether binding adds a join through a to-many
// relation, which can repeat root rows.
func (p *CompiledPredicate) JoinsToMany() bool {
	var walk func(t term) bool
	walk = func(t term) bool {
		switch t := t.(type) {
		case comparisonTerm:
			return t.relation != nil && t.relation.Multiplicity == schema.Many
		case groupTerm:
			for _, c := range t.children {
				if walk(c) {
					return true
				}
			}
		}
		return false
	}
	return walk(p.root)
}

// Bind adds the joins the predicate needs to sel, reading the root entity
// under rootAlias, and returns the equivalent queryir predicate. Each
// relation comparison gets its own LEFT JOIN under a fresh alias.
func (p *CompiledPredicate) Bind(sel *queryir.Select, rootAlias string) queryir.Predicate {
	b := &binder{sel: sel, rootAlias: rootAlias}
	return b.bind(p.root)
}

type binder struct {
	sel       *queryir.Select
	rootAlias string
	next      int
}

func (b *binder) alias() string {
	for {
		b.next++
		alias := fmt.Sprintf("f%d", b.next)
		if !b.sel.HasJoin(alias) && !b.sel.HasJoin(alias+plan.ViaSuffix) && alias != b.sel.From.Alias {
			return alias
		}
	}
}

func (b *binder) bind(t term) queryir.Predicate {
	switch t := t.(type) {
	case groupTerm:
		preds := make([]queryir.Predicate, len(t.children))
		for i, c := range t.children {
			preds[i] = b.bind(c)
		}
		if t.op == Or {
			return queryir.Or{Predicates: preds}
		}
		return queryir.And{Predicates: preds}
	case comparisonTerm:
		table := b.rootAlias
		if t.relation != nil {
			table = b.alias()
			plan.JoinTarget(b.sel, queryir.LeftJoin, t.relation.Link(), b.rootAlias, t.target, table)
		}
		return t.predicate(queryir.Ref(table, t.attr.Column))
	}
	return nil
}

func (t comparisonTerm) predicate(col queryir.ColumnRef) queryir.Predicate {
	switch t.op {
	case OpEqual, OpNotEqual:
		if t.pattern != "" {
			return queryir.Like{Column: col, Pattern: t.pattern, Negate: t.op == OpNotEqual}
		}
		op := queryir.OpEq
		if t.op == OpNotEqual {
			op = queryir.OpNe
		}
		return queryir.Compare{Column: col, Op: op, Value: t.values[0]}
	case OpGreater:
		return queryir.Compare{Column: col, Op: queryir.OpGt, Value: t.values[0]}
	case OpGreaterEqual:
		return queryir.Compare{Column: col, Op: queryir.OpGe, Value: t.values[0]}
	case OpLess:
		return queryir.Compare{Column: col, Op: queryir.OpLt, Value: t.values[0]}
	case OpLessEqual:
		return queryir.Compare{Column: col, Op: queryir.OpLe, Value: t.values[0]}
	case OpIn, OpOut:
		return queryir.In{Column: col, Values: t.values, Negate: t.op == OpOut}
	case OpIsNull:
		return queryir.IsNull{Column: col, Negate: !t.null}
	}
	return nil
}
