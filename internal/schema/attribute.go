package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/fieldquery/internal/value"
)

// RelationKind distinguishes scalar attributes from relationships.
type RelationKind int

const (
	RelationNone RelationKind = iota
	RelationToOne
	RelationToMany
)

func (k RelationKind) String() string {
	switch k {
	case RelationNone:
		return "none"
	case RelationToOne:
		return "to-one"
	case RelationToMany:
		return "to-many"
	default:
		return fmt.Sprintf("RelationKind(%d)", int(k))
	}
}

// ParseRelationKind accepts the relation names used in schema sources,
// including the JPA-style association names.
func ParseRelationKind(s string) (RelationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RelationNone, nil
	case "to-one", "toone", "one", "many-to-one", "one-to-one":
		return RelationToOne, nil
	case "to-many", "tomany", "many", "one-to-many", "many-to-many":
		return RelationToMany, nil
	default:
		return RelationNone, fmt.Errorf("unknown relation kind %q", s)
	}
}

// Multiplicity is how many values an attribute holds.
type Multiplicity int

const (
	Single Multiplicity = iota
	Many
)

func (m Multiplicity) String() string {
	if m == Many {
		return "many"
	}
	return "single"
}

// JoinTable describes an association table.
// Column references the owning entity's identity; InverseColumn references
// the target entity's identity.
type JoinTable struct {
	Name          string `json:"name" yaml:"name"`
	Column        string `json:"column" yaml:"column"`
	InverseColumn string `json:"inverseColumn" yaml:"inverseColumn"`
}

// Attribute describes one attribute of an entity.
type Attribute struct {
	Name         string
	Column       string // storage column; relations without a foreign key have none
	Kind         value.Kind
	Identity     bool
	Multiplicity Multiplicity
	Relation     RelationKind
	Target       string // target entity name, relations only

	// Storage hints for relations. At most one is normally set; see Link.
	ForeignKey string
	MappedBy   string
	JoinTable  *JoinTable

	link Link
}

// IsRelation reports whether the attribute refers to another entity.
func (a *Attribute) IsRelation() bool {
	return a.Relation != RelationNone
}

// Link returns the resolved storage join for a relational attribute.
func (a *Attribute) Link() Link {
	return a.link
}

// Link is a resolved join between an owner entity and a relation target.
//
// A direct link joins owner.OwnerColumn = target.TargetColumn. A link
// through an association table (Via != "") joins
// Via.OwnerColumn = owner.OwnerKey and Via.TargetColumn = target.TargetKey.
type Link struct {
	Via          string
	OwnerColumn  string
	TargetColumn string
	OwnerKey     string
	TargetKey    string
}

// Through reports whether the link uses an association table.
func (l Link) Through() bool {
	return l.Via != ""
}
