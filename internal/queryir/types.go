package queryir

import (
	"fmt"

	"github.com/roach88/fieldquery/internal/value"
)

// Query is a query sent to a store. Only Select and Count implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate is a filter condition. Only the types in this package
// implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Table is a table reference with the alias used to qualify its columns.
type Table struct {
	Name  string
	Alias string
}

// ColumnRef is a column qualified by a table alias.
type ColumnRef struct {
	Table string
	Name  string
}

// Ref builds a ColumnRef.
func Ref(table, name string) ColumnRef {
	return ColumnRef{Table: table, Name: name}
}

func (r ColumnRef) String() string {
	return r.Table + "." + r.Name
}

// Column is a projected column. Alias names it in result rows and Kind
// tells the store how to convert the driver value.
type Column struct {
	Ref   ColumnRef
	Alias string
	Kind  value.Kind
}

// JoinKind selects inner or left outer join semantics.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	if k == LeftJoin {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

// On is one equality of a join condition.
type On struct {
	Left  ColumnRef
	Right ColumnRef
}

// Join adds a table to a Select. All On equalities must hold.
type Join struct {
	Kind  JoinKind
	Table Table
	On    []On
}

// Order is one ORDER BY term. Kind is the column's kind when the store
// must normalize it before ordering; the zero value orders the raw column.
type Order struct {
	Column ColumnRef
	Kind   value.Kind
	Desc   bool
}

// Select reads rows from a root table.
//
//	SELECT [DISTINCT] <columns> FROM <from> <joins>
//	WHERE <filter> ORDER BY <order> LIMIT <limit> OFFSET <offset>
//
// Limit 0 means unlimited.
type Select struct {
	From     Table
	Columns  []Column
	Joins    []Join
	Filter   Predicate // nil = no filter
	Distinct bool
	OrderBy  []Order
	Limit    int
	Offset   int
}

func (Select) queryNode() {}

// HasJoin reports whether a join with the given alias was already added.
func (s *Select) HasJoin(alias string) bool {
	for _, j := range s.Joins {
		if j.Table.Alias == alias {
			return true
		}
	}
	return false
}

// Count counts the distinct projected rows of a Select.
//
//	SELECT COUNT(*) FROM (SELECT DISTINCT <columns> ... WHERE <filter>)
type Count struct {
	Select Select
}

func (Count) queryNode() {}

// CompareOp is a binary comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

var compareSymbols = [...]string{
	OpEq: "=",
	OpNe: "<>",
	OpGt: ">",
	OpGe: ">=",
	OpLt: "<",
	OpLe: "<=",
}

// Symbol returns the SQL spelling of the operator.
func (op CompareOp) Symbol() string {
	if int(op) < 0 || int(op) >= len(compareSymbols) {
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
	return compareSymbols[op]
}

func (op CompareOp) String() string {
	return op.Symbol()
}

// Compare is <column> <op> <value>. SQL NULL never satisfies it.
type Compare struct {
	Column ColumnRef
	Op     CompareOp
	Value  value.Value
}

func (Compare) predicateNode() {}

// In is <column> [NOT] IN (<values>). An empty In matches nothing; an
// empty NOT IN matches everything.
type In struct {
	Column ColumnRef
	Values []value.Value
	Negate bool
}

func (In) predicateNode() {}

// Like is <column> [NOT] LIKE <pattern>, with '%' and '_' as wildcards and
// '\' as the escape character.
type Like struct {
	Column  ColumnRef
	Pattern string
	Negate  bool
}

func (Like) predicateNode() {}

// IsNull is <column> IS [NOT] NULL.
type IsNull struct {
	Column ColumnRef
	Negate bool
}

func (IsNull) predicateNode() {}

// And holds when every child holds. An empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any child holds. An empty Or is false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Row is one result row, keyed by column alias.
type Row map[string]value.Value
