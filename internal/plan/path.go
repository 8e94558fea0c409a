package plan

import "strings"

// Column is a parsed column path: RootColumn or RelationColumn.
type Column interface {
	column() // Marker method - seals interface to this package
}

// RootColumn names a root attribute: a scalar, or a whole relation.
type RootColumn struct {
	Name string
}

func (RootColumn) column() {}

// RelationColumn names one attribute of a relation target.
type RelationColumn struct {
	Relation string
	Name     string
}

func (RelationColumn) column() {}

// ParsePath parses a dotted column path. It reports false for empty
// segments and for paths deeper than one relation hop.
func ParsePath(path string) (Column, bool) {
	path = strings.TrimSpace(path)
	head, tail, dotted := strings.Cut(path, ".")
	if head == "" {
		return nil, false
	}
	if !dotted {
		return RootColumn{Name: head}, true
	}
	if tail == "" || strings.Contains(tail, ".") {
		return nil, false
	}
	return RelationColumn{Relation: head, Name: tail}, true
}
