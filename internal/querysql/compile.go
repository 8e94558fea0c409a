package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/value"
)

// SQLCompiler compiles query IR to parameterized SQL for one dialect.
//
// Every Select carries an ORDER BY, falling back to its first projected
// column, so results are deterministic. Values are always parameterized,
// never interpolated.
type SQLCompiler struct {
	Dialect Dialect
}

// NewSQLCompiler creates a compiler for the dialect.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// Compile converts a query to SQL text and its parameters.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	b := &builder{dialect: c.Dialect}
	var err error
	switch query := q.(type) {
	case queryir.Select:
		err = b.selectStmt(query)
	case *queryir.Select:
		err = b.selectStmt(*query)
	case queryir.Count:
		err = b.countStmt(query)
	case *queryir.Count:
		err = b.countStmt(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
	if err != nil {
		return "", nil, err
	}
	return b.sql.String(), b.args, nil
}

type builder struct {
	dialect Dialect
	sql     strings.Builder
	args    []any
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sql.WriteString(p)
	}
}

func (b *builder) param(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func ref(r queryir.ColumnRef) string {
	return quoteIdent(r.Table) + "." + quoteIdent(r.Name)
}

// operand writes a column compared or ordered as kind k. SQLite keeps
// timestamps as text in whatever layout the writer used (the sqlite drivers
// append a zone offset), so they are normalized to SQLiteTimeLayout in UTC
// first.
func (b *builder) operand(r queryir.ColumnRef, k value.Kind) string {
	if b.dialect == SQLite && k == value.KindTimestamp {
		return "strftime('%Y-%m-%d %H:%M:%f', " + ref(r) + ")"
	}
	return ref(r)
}

// kindOf returns the kind of the first non-null value.
func kindOf(vals ...value.Value) value.Kind {
	for _, v := range vals {
		if !value.IsNull(v) {
			return v.Kind()
		}
	}
	return value.KindInvalid
}

func (b *builder) selectStmt(q queryir.Select) error {
	if err := b.selectCore(q, q.Distinct); err != nil {
		return err
	}

	b.write(" ORDER BY ")
	order := q.OrderBy
	if len(order) == 0 {
		if len(q.Columns) == 0 {
			return fmt.Errorf("select from %s has no columns to order by", q.From.Name)
		}
		order = []queryir.Order{{Column: q.Columns[0].Ref}}
	}
	for i, o := range order {
		if i > 0 {
			b.write(", ")
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		b.write(b.operand(o.Column, o.Kind), dir)
	}

	switch {
	case q.Limit > 0:
		b.write(" LIMIT ", b.param(q.Limit))
	case q.Offset > 0 && b.dialect == SQLite:
		// SQLite only accepts OFFSET after LIMIT.
		b.write(" LIMIT -1")
	}
	if q.Offset > 0 {
		b.write(" OFFSET ", b.param(q.Offset))
	}
	return nil
}

func (b *builder) countStmt(q queryir.Count) error {
	b.write("SELECT COUNT(*) FROM (")
	if err := b.selectCore(q.Select, true); err != nil {
		return err
	}
	b.write(") AS ", quoteIdent("c"))
	return nil
}

// selectCore writes SELECT ... FROM ... JOIN ... WHERE ...
func (b *builder) selectCore(q queryir.Select, distinct bool) error {
	if len(q.Columns) == 0 {
		return fmt.Errorf("select from %s has no columns", q.From.Name)
	}

	b.write("SELECT ")
	if distinct {
		b.write("DISTINCT ")
	}
	for i, col := range q.Columns {
		if i > 0 {
			b.write(", ")
		}
		b.write(ref(col.Ref), " AS ", quoteIdent(col.Alias))
	}

	b.write(" FROM ", quoteIdent(q.From.Name), " AS ", quoteIdent(q.From.Alias))

	for _, j := range q.Joins {
		if len(j.On) == 0 {
			return fmt.Errorf("join of %s has no condition", j.Table.Alias)
		}
		b.write(" ", j.Kind.String(), " ", quoteIdent(j.Table.Name), " AS ", quoteIdent(j.Table.Alias), " ON ")
		for i, on := range j.On {
			if i > 0 {
				b.write(" AND ")
			}
			b.write(ref(on.Left), " = ", ref(on.Right))
		}
	}

	if q.Filter != nil {
		b.write(" WHERE ")
		if err := b.predicate(q.Filter); err != nil {
			return fmt.Errorf("compile filter: %w", err)
		}
	}
	return nil
}

func (b *builder) predicate(p queryir.Predicate) error {
	switch pred := p.(type) {
	case queryir.Compare:
		arg, err := b.dialect.Param(pred.Value)
		if err != nil {
			return err
		}
		b.write(b.operand(pred.Column, kindOf(pred.Value)), " ", pred.Op.Symbol(), " ", b.param(arg))
	case queryir.In:
		return b.in(pred)
	case queryir.Like:
		op := " LIKE "
		if pred.Negate {
			op = " NOT LIKE "
		}
		b.write(ref(pred.Column), op, b.param(pred.Pattern), ` ESCAPE '\'`)
	case queryir.IsNull:
		if pred.Negate {
			b.write(ref(pred.Column), " IS NOT NULL")
		} else {
			b.write(ref(pred.Column), " IS NULL")
		}
	case queryir.And:
		return b.group(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return b.group(pred.Predicates, " OR ", "1 = 0")
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
	return nil
}

func (b *builder) in(pred queryir.In) error {
	if len(pred.Values) == 0 {
		if pred.Negate {
			b.write("1 = 1")
		} else {
			b.write("1 = 0")
		}
		return nil
	}

	b.write(b.operand(pred.Column, kindOf(pred.Values...)))
	if pred.Negate {
		b.write(" NOT")
	}
	b.write(" IN (")
	for i, v := range pred.Values {
		arg, err := b.dialect.Param(v)
		if err != nil {
			return err
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(b.param(arg))
	}
	b.write(")")
	return nil
}

// group writes children joined by sep inside parentheses. An empty group
// is written as its identity element.
func (b *builder) group(children []queryir.Predicate, sep, empty string) error {
	if len(children) == 0 {
		b.write(empty)
		return nil
	}
	b.write("(")
	for i, child := range children {
		if i > 0 {
			b.write(sep)
		}
		if err := b.predicate(child); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}
