package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/fieldquery/internal/value"
)

// EntityDef is the source form of an entity, as produced by a schema loader.
type EntityDef struct {
	Name       string         `json:"name" yaml:"name"`
	Table      string         `json:"table,omitempty" yaml:"table,omitempty"`
	Identity   string         `json:"identity,omitempty" yaml:"identity,omitempty"`
	Attributes []AttributeDef `json:"attributes" yaml:"attributes"`
}

// AttributeDef is the source form of an attribute.
//
// Type is a value kind name for scalars. Relations set Relation and Target
// and leave Type empty (or "relation").
type AttributeDef struct {
	Name       string     `json:"name" yaml:"name"`
	Column     string     `json:"column,omitempty" yaml:"column,omitempty"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty"`
	Identity   bool       `json:"identity,omitempty" yaml:"identity,omitempty"`
	Relation   string     `json:"relation,omitempty" yaml:"relation,omitempty"`
	Target     string     `json:"target,omitempty" yaml:"target,omitempty"`
	ForeignKey string     `json:"foreignKey,omitempty" yaml:"foreignKey,omitempty"`
	MappedBy   string     `json:"mappedBy,omitempty" yaml:"mappedBy,omitempty"`
	JoinTable  *JoinTable `json:"joinTable,omitempty" yaml:"joinTable,omitempty"`
}

// Option configures catalog construction.
type Option func(*options)

type options struct {
	bindings map[string]Binding
}

// WithBinding attaches a typed Go binding to an entity. Entities without a
// binding are materialized as *Record.
func WithBinding(entity string, b Binding) Option {
	return func(o *options) {
		o.bindings[entity] = b
	}
}

// Catalog is the immutable set of entity schemas. It is built once and is
// safe for concurrent use.
type Catalog struct {
	entities []*EntitySchema
	byName   map[string]*EntitySchema
}

// New validates the definitions, resolves every relation link and builds the
// accessor tables.
func New(defs []EntityDef, opts ...Option) (*Catalog, error) {
	o := options{bindings: make(map[string]Binding)}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{byName: make(map[string]*EntitySchema, len(defs))}
	for _, def := range defs {
		e, err := buildEntity(def)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, &Error{Entity: e.Name, Message: "duplicate entity"}
		}
		c.entities = append(c.entities, e)
		c.byName[e.Name] = e
	}

	for name := range o.bindings {
		if _, ok := c.byName[name]; !ok {
			return nil, &Error{Entity: name, Message: "binding for unknown entity"}
		}
	}

	for _, e := range c.entities {
		for _, a := range e.Relations() {
			if _, ok := c.byName[a.Target]; !ok {
				return nil, &Error{Entity: e.Name, Attribute: a.Name,
					Message: fmt.Sprintf("unknown relation target %q", a.Target)}
			}
		}
	}

	for _, e := range c.entities {
		for _, a := range e.Relations() {
			link, err := c.resolveLink(e, a)
			if err != nil {
				return nil, err
			}
			a.link = link
		}
	}

	for _, e := range c.entities {
		b, ok := o.bindings[e.Name]
		if !ok {
			b = recordBinding(e)
		}
		if err := e.bind(b); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func buildEntity(def EntityDef) (*EntitySchema, error) {
	if def.Name == "" {
		return nil, &Error{Message: "entity without a name"}
	}
	e := &EntitySchema{
		Name:   def.Name,
		Table:  def.Table,
		byName: make(map[string]*Attribute, len(def.Attributes)),
	}
	if e.Table == "" {
		e.Table = def.Name
	}

	for _, ad := range def.Attributes {
		a, err := buildAttribute(def.Name, ad)
		if err != nil {
			return nil, err
		}
		if _, dup := e.byName[a.Name]; dup {
			return nil, &Error{Entity: def.Name, Attribute: a.Name, Message: "duplicate attribute"}
		}
		e.attrs = append(e.attrs, a)
		e.byName[a.Name] = a
	}

	if err := e.resolveIdentity(def.Identity); err != nil {
		return nil, err
	}
	return e, nil
}

func buildAttribute(entity string, ad AttributeDef) (*Attribute, error) {
	if ad.Name == "" {
		return nil, &Error{Entity: entity, Message: "attribute without a name"}
	}
	if strings.HasPrefix(ad.Name, "__") {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "attribute names starting with __ are reserved"}
	}
	if strings.Contains(ad.Name, ".") {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "attribute names must not contain '.'"}
	}

	rel, err := ParseRelationKind(ad.Relation)
	if err != nil {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: err.Error()}
	}

	a := &Attribute{
		Name:     ad.Name,
		Column:   ad.Column,
		Identity: ad.Identity,
		Relation: rel,
	}

	if rel == RelationNone {
		if ad.Target != "" || ad.ForeignKey != "" || ad.MappedBy != "" || ad.JoinTable != nil {
			return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "relation hints on a scalar attribute"}
		}
		kind, err := value.ParseKind(ad.Type)
		if err != nil {
			return nil, &Error{Entity: entity, Attribute: ad.Name, Message: err.Error()}
		}
		a.Kind = kind
		if a.Column == "" {
			a.Column = ad.Name
		}
		return a, nil
	}

	if ad.Type != "" && !strings.EqualFold(ad.Type, "relation") {
		return nil, &Error{Entity: entity, Attribute: ad.Name,
			Message: fmt.Sprintf("relation declared with scalar type %q", ad.Type)}
	}
	if ad.Identity {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "a relation cannot be the identity"}
	}
	if ad.Target == "" {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "relation without a target"}
	}
	a.Target = ad.Target
	a.ForeignKey = ad.ForeignKey
	a.MappedBy = ad.MappedBy
	a.JoinTable = ad.JoinTable
	if a.ForeignKey != "" {
		a.Column = a.ForeignKey
	}
	if rel == RelationToMany {
		a.Multiplicity = Many
		if a.ForeignKey != "" {
			return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "a to-many relation cannot own a foreign key"}
		}
	}
	if jt := a.JoinTable; jt != nil && (jt.Name == "" || jt.Column == "" || jt.InverseColumn == "") {
		return nil, &Error{Entity: entity, Attribute: ad.Name, Message: "join table needs name, column and inverseColumn"}
	}
	return a, nil
}

func (e *EntitySchema) resolveIdentity(declared string) error {
	var flagged []*Attribute
	for _, a := range e.attrs {
		if a.Identity {
			flagged = append(flagged, a)
		}
	}
	switch {
	case len(flagged) > 1:
		return &Error{Entity: e.Name, Message: "more than one identity attribute"}
	case len(flagged) == 1:
		if declared != "" && declared != flagged[0].Name {
			return &Error{Entity: e.Name, Message: fmt.Sprintf("identity %q conflicts with flagged attribute %q", declared, flagged[0].Name)}
		}
		e.identity = flagged[0]
		return nil
	}

	if declared == "" {
		declared = "id"
	}
	a, ok := e.byName[declared]
	if !ok || a.IsRelation() {
		return &Error{Entity: e.Name, Message: fmt.Sprintf("no identity attribute (looked for %q)", declared)}
	}
	a.Identity = true
	e.identity = a
	return nil
}

func (e *EntitySchema) bind(b Binding) error {
	if b.New == nil {
		return &Error{Entity: e.Name, Message: "binding has no constructor"}
	}
	e.accessors = make(map[string]Accessor, len(e.attrs))
	for _, a := range e.attrs {
		acc, ok := b.Accessors[a.Name]
		if !ok {
			return &Error{Entity: e.Name, Attribute: a.Name, Message: "binding has no accessor"}
		}
		if acc.Reset == nil {
			return &Error{Entity: e.Name, Attribute: a.Name, Message: "accessor has no Reset"}
		}
		if a.Relation == RelationToMany {
			if acc.Items == nil || acc.Add == nil {
				return &Error{Entity: e.Name, Attribute: a.Name, Message: "to-many accessor needs Items and Add"}
			}
		} else if acc.Get == nil || acc.Set == nil {
			return &Error{Entity: e.Name, Attribute: a.Name, Message: "accessor needs Get and Set"}
		}
		e.accessors[a.Name] = acc
	}
	e.newFn = b.New
	return nil
}

// resolveLink works out how owner joins to the target of a. Explicit storage
// on a wins; otherwise the owning side on the target is mirrored.
func (c *Catalog) resolveLink(owner *EntitySchema, a *Attribute) (Link, error) {
	target := c.byName[a.Target]

	if jt := a.JoinTable; jt != nil {
		return Link{
			Via:          jt.Name,
			OwnerColumn:  jt.Column,
			TargetColumn: jt.InverseColumn,
			OwnerKey:     owner.identity.Column,
			TargetKey:    target.identity.Column,
		}, nil
	}
	if a.ForeignKey != "" {
		return Link{OwnerColumn: a.ForeignKey, TargetColumn: target.identity.Column}, nil
	}

	var inverse *Attribute
	if a.MappedBy != "" {
		m, ok := target.byName[a.MappedBy]
		if !ok {
			return Link{}, &Error{Entity: owner.Name, Attribute: a.Name,
				Message: fmt.Sprintf("mappedBy %q is not an attribute of %s", a.MappedBy, target.Name)}
		}
		if m.Target != owner.Name {
			return Link{}, &Error{Entity: owner.Name, Attribute: a.Name,
				Message: fmt.Sprintf("mappedBy %s.%s does not refer back to %s", target.Name, m.Name, owner.Name)}
		}
		inverse = m
	} else if name, ok := c.InverseRelationName(owner.Name, target.Name); ok {
		inverse = target.byName[name]
	}

	if inverse != nil && inverse != a {
		if jt := inverse.JoinTable; jt != nil {
			return Link{
				Via:          jt.Name,
				OwnerColumn:  jt.InverseColumn,
				TargetColumn: jt.Column,
				OwnerKey:     owner.identity.Column,
				TargetKey:    target.identity.Column,
			}, nil
		}
		if inverse.ForeignKey != "" {
			return Link{OwnerColumn: owner.identity.Column, TargetColumn: inverse.ForeignKey}, nil
		}
	}

	return Link{}, &Error{Entity: owner.Name, Attribute: a.Name, Message: "cannot resolve relation storage"}
}

// Entity returns the named entity schema.
func (c *Catalog) Entity(name string) (*EntitySchema, error) {
	e, ok := c.byName[name]
	if !ok {
		return nil, unknownEntity(name)
	}
	return e, nil
}

// Entities returns all entities in declaration order.
func (c *Catalog) Entities() []*EntitySchema {
	return c.entities
}

// AttributesOf returns the attributes of an entity in declaration order.
func (c *Catalog) AttributesOf(entity string) ([]*Attribute, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	return e.Attributes(), nil
}

// IdentityAttribute returns the identity attribute of an entity.
func (c *Catalog) IdentityAttribute(entity string) (*Attribute, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	return e.Identity(), nil
}

// RelationTarget returns the target schema of a relation attribute.
func (c *Catalog) RelationTarget(entity, relation string) (*EntitySchema, error) {
	a, err := c.relation(entity, relation)
	if err != nil {
		return nil, err
	}
	return c.byName[a.Target], nil
}

// InverseRelationName finds the attribute on to whose target is from.
// When several match, the first declared wins.
func (c *Catalog) InverseRelationName(from, to string) (string, bool) {
	e, ok := c.byName[to]
	if !ok {
		return "", false
	}
	for _, a := range e.attrs {
		if a.IsRelation() && a.Target == from {
			return a.Name, true
		}
	}
	return "", false
}

// Link returns the resolved join for a relation attribute.
func (c *Catalog) Link(entity, relation string) (Link, error) {
	a, err := c.relation(entity, relation)
	if err != nil {
		return Link{}, err
	}
	return a.link, nil
}

// Accessors returns the accessor table of an entity.
func (c *Catalog) Accessors(entity string) (map[string]Accessor, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	return e.accessors, nil
}

// New returns a fresh instance of an entity.
func (c *Catalog) New(entity string) (any, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	return e.New(), nil
}

func (c *Catalog) relation(entity, relation string) (*Attribute, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	a, ok := e.byName[relation]
	if !ok {
		return nil, unknownAttribute(entity, relation)
	}
	if !a.IsRelation() {
		return nil, &Error{Entity: entity, Attribute: relation, Message: "not a relation"}
	}
	return a, nil
}
