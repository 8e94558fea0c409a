package filter

import (
	"fmt"
	"strings"
)

// Node is a parsed filter: Comparison or Logical.
type Node interface {
	node() // Marker method - seals interface to this package
	String() string
}

// Operator is a comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpIn
	OpOut
	OpIsNull
)

var operatorSymbols = map[string]Operator{
	"==":       OpEqual,
	"!=":       OpNotEqual,
	"=gt=":     OpGreater,
	">":        OpGreater,
	"=ge=":     OpGreaterEqual,
	">=":       OpGreaterEqual,
	"=lt=":     OpLess,
	"<":        OpLess,
	"=le=":     OpLessEqual,
	"<=":       OpLessEqual,
	"=in=":     OpIn,
	"=out=":    OpOut,
	"=isnull=": OpIsNull,
}

var operatorNames = [...]string{
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpGreater:      "=gt=",
	OpGreaterEqual: "=ge=",
	OpLess:         "=lt=",
	OpLessEqual:    "=le=",
	OpIn:           "=in=",
	OpOut:          "=out=",
	OpIsNull:       "=isnull=",
}

// LookupOperator maps an operator symbol to its Operator.
func LookupOperator(sym string) (Operator, bool) {
	op, ok := operatorSymbols[sym]
	return op, ok
}

func (op Operator) String() string {
	if int(op) < 0 || int(op) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorNames[op]
}

// multiValued reports whether the operator takes an argument list.
func (op Operator) multiValued() bool {
	return op == OpIn || op == OpOut
}

// ranged reports whether the operator needs an ordered kind.
func (op Operator) ranged() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	}
	return false
}

// Comparison is selector operator arguments. Pos is the byte offset of the
// selector in the parsed input.
type Comparison struct {
	Selector string
	Operator Operator
	Args     []string
	Pos      int
}

func (Comparison) node() {}

func (c Comparison) String() string {
	if len(c.Args) == 1 && !c.Operator.multiValued() {
		return c.Selector + c.Operator.String() + quoteArg(c.Args[0])
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = quoteArg(a)
	}
	return c.Selector + c.Operator.String() + "(" + strings.Join(args, ",") + ")"
}

func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, reservedChars+" \t\r\n") {
		return s
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// LogicalOp combines the children of a Logical node.
type LogicalOp int

const (
	And LogicalOp = iota
	Or
)

func (op LogicalOp) String() string {
	if op == Or {
		return "OR"
	}
	return "AND"
}

// Logical combines child nodes with AND or OR.
type Logical struct {
	Op       LogicalOp
	Children []Node
}

func (Logical) node() {}

func (l Logical) String() string {
	sep := ";"
	if l.Op == Or {
		sep = ","
	}
	parts := make([]string, len(l.Children))
	for i, c := range l.Children {
		parts[i] = c.String()
		if child, ok := c.(Logical); ok && child.Op == Or && l.Op == And {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}
