// Package plan turns a requested column list into a ColumnPlan: the root
// attributes to select and, per requested relation, the target attributes
// to fetch with a dependent query.
package plan

import (
	"github.com/roach88/fieldquery/internal/schema"
)

// RelationPlan is one requested relation and the target attributes to
// fetch for it. Columns starts with the target identity.
type RelationPlan struct {
	Attribute *schema.Attribute
	Target    *schema.EntitySchema
	Columns   []*schema.Attribute
}

// Has reports whether the target attribute is planned.
func (r RelationPlan) Has(name string) bool {
	return containsAttr(r.Columns, name)
}

// ColumnPlan is immutable once built.
type ColumnPlan struct {
	Entity *schema.EntitySchema
	// Root holds root scalar attributes, identity first.
	Root []*schema.Attribute
	// Relations holds requested relations in declaration order.
	Relations []RelationPlan
}

// HasRoot reports whether a root scalar attribute is planned.
func (p *ColumnPlan) HasRoot(name string) bool {
	return containsAttr(p.Root, name)
}

// Relation returns the plan of a requested relation.
func (p *ColumnPlan) Relation(name string) (RelationPlan, bool) {
	for _, r := range p.Relations {
		if r.Attribute.Name == name {
			return r, true
		}
	}
	return RelationPlan{}, false
}

// Paths renders the plan back as column paths, root first.
func (p *ColumnPlan) Paths() []string {
	var out []string
	for _, a := range p.Root {
		out = append(out, a.Name)
	}
	for _, r := range p.Relations {
		for _, a := range r.Columns {
			out = append(out, r.Attribute.Name+"."+a.Name)
		}
	}
	return out
}

func containsAttr(attrs []*schema.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Build plans the requested columns of an entity.
//
// No columns means every scalar and every relation. A relation named alone
// expands to all of its target's scalars. Unknown names, paths that go
// deeper than one hop, and sub-fields that are themselves relations are
// dropped; so is a relation whose sub-fields were all dropped. Only an
// unknown entity is an error.
func Build(c *schema.Catalog, entity string, columns []string) (*ColumnPlan, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}

	rootWanted := map[string]bool{}
	relWanted := map[string]map[string]bool{}
	relAll := map[string]bool{}

	if len(columns) == 0 {
		for _, a := range e.Attributes() {
			if a.IsRelation() {
				relAll[a.Name] = true
			} else {
				rootWanted[a.Name] = true
			}
		}
	}

	for _, path := range columns {
		col, ok := ParsePath(path)
		if !ok {
			continue
		}
		switch col := col.(type) {
		case RootColumn:
			a, ok := e.Attribute(col.Name)
			if !ok {
				continue
			}
			if a.IsRelation() {
				relAll[a.Name] = true
			} else {
				rootWanted[a.Name] = true
			}
		case RelationColumn:
			a, ok := e.Attribute(col.Relation)
			if !ok || !a.IsRelation() {
				continue
			}
			if relWanted[a.Name] == nil {
				relWanted[a.Name] = map[string]bool{}
			}
			relWanted[a.Name][col.Name] = true
		}
	}

	p := &ColumnPlan{Entity: e}
	p.Root = selectScalars(e, func(a *schema.Attribute) bool { return rootWanted[a.Name] })

	for _, rel := range e.Relations() {
		all := relAll[rel.Name]
		wanted := relWanted[rel.Name]
		if !all && len(wanted) == 0 {
			continue
		}
		target, err := c.RelationTarget(e.Name, rel.Name)
		if err != nil {
			return nil, err
		}
		cols := selectScalars(target, func(a *schema.Attribute) bool { return all || wanted[a.Name] })
		if !all && len(cols) == 1 && !wanted[target.Identity().Name] {
			// Only the forced identity survived: every requested
			// sub-field was dropped.
			continue
		}
		p.Relations = append(p.Relations, RelationPlan{Attribute: rel, Target: target, Columns: cols})
	}
	return p, nil
}

// selectScalars returns the identity followed by the scalars of e that
// keep accepts, in declaration order.
func selectScalars(e *schema.EntitySchema, keep func(*schema.Attribute) bool) []*schema.Attribute {
	id := e.Identity()
	out := []*schema.Attribute{id}
	for _, a := range e.Scalars() {
		if a != id && keep(a) {
			out = append(out, a)
		}
	}
	return out
}
