package engine

import (
	"fmt"

	"github.com/roach88/fieldquery/internal/plan"
	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/schema"
	"github.com/roach88/fieldquery/internal/value"
)

// hydrator turns result rows into entity objects for one request.
// Root objects are indexed by identity for merging relation rows, and
// to-many children by relation, owner identity and child identity.
type hydrator struct {
	plan     *plan.ColumnPlan
	objects  []any
	ids      []value.Value
	index    map[any]any
	children map[string]map[any]map[any]any
}

func newHydrator(p *plan.ColumnPlan) *hydrator {
	return &hydrator{
		plan:     p,
		objects:  []any{},
		index:    make(map[any]any),
		children: make(map[string]map[any]map[any]any),
	}
}

// roots builds one object per root row. Requested to-many relations start
// as empty collections; every other unrequested field is reset.
func (h *hydrator) roots(rows []queryir.Row) error {
	e := h.plan.Entity
	id := e.Identity()

	for _, row := range rows {
		key := value.Key(row[id.Name])
		if _, seen := h.index[key]; seen {
			continue
		}

		obj := e.New()
		if err := setColumns(e, h.plan.Root, row, obj); err != nil {
			return err
		}
		for _, a := range e.Attributes() {
			acc, err := e.Accessor(a.Name)
			if err != nil {
				return err
			}
			switch {
			case !a.IsRelation():
				if !h.plan.HasRoot(a.Name) {
					acc.Reset(obj)
				}
			case a.Relation == schema.RelationToMany && h.requested(a.Name):
				acc.Init(obj)
			default:
				acc.Reset(obj)
			}
		}

		h.index[key] = obj
		h.ids = append(h.ids, row[id.Name])
		h.objects = append(h.objects, obj)
	}
	return nil
}

func (h *hydrator) requested(relation string) bool {
	_, ok := h.plan.Relation(relation)
	return ok
}

// merge applies relation rows to their owners. Children are upserted by
// target identity, so applying a row twice changes nothing.
func (h *hydrator) merge(rp plan.RelationPlan, rows []queryir.Row) error {
	owner := h.plan.Entity
	acc, err := owner.Accessor(rp.Attribute.Name)
	if err != nil {
		return err
	}
	targetID := rp.Target.Identity()
	children := h.children[rp.Attribute.Name]
	if children == nil {
		children = make(map[any]map[any]any)
		h.children[rp.Attribute.Name] = children
	}

	for _, row := range rows {
		parentKey := value.Key(row[parentAlias])
		parent, ok := h.index[parentKey]
		if !ok {
			continue
		}

		var child any
		if rp.Attribute.Relation == schema.RelationToMany {
			byID := children[parentKey]
			if byID == nil {
				byID = make(map[any]any)
				children[parentKey] = byID
			}
			childKey := value.Key(row[targetID.Name])
			if child = byID[childKey]; child == nil {
				child = newChild(rp.Target)
				if err := acc.Add(parent, child); err != nil {
					return fieldError(owner, rp.Attribute, err)
				}
				byID[childKey] = child
			}
		} else {
			if child = acc.Get(parent); child == nil {
				child = newChild(rp.Target)
				if err := acc.Set(parent, child); err != nil {
					return fieldError(owner, rp.Attribute, err)
				}
			}
		}

		if err := setColumns(rp.Target, rp.Columns, row, child); err != nil {
			return err
		}
	}
	return nil
}

// newChild returns a related object with its own relations reset, since
// only one hop is ever materialized.
func newChild(e *schema.EntitySchema) any {
	obj := e.New()
	for _, a := range e.Relations() {
		if acc, err := e.Accessor(a.Name); err == nil {
			acc.Reset(obj)
		}
	}
	return obj
}

func setColumns(e *schema.EntitySchema, attrs []*schema.Attribute, row queryir.Row, obj any) error {
	for _, a := range attrs {
		v, ok := row[a.Name]
		if !ok {
			continue
		}
		acc, err := e.Accessor(a.Name)
		if err != nil {
			return err
		}
		if err := acc.Set(obj, v.Native()); err != nil {
			return fieldError(e, a, err)
		}
	}
	return nil
}

// fieldError reports a binding whose field type does not match the
// attribute.
func fieldError(e *schema.EntitySchema, a *schema.Attribute, err error) error {
	return &schema.Error{Entity: e.Name, Attribute: a.Name, Message: fmt.Sprintf("set field: %v", err)}
}
