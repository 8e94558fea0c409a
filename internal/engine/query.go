package engine

import (
	"github.com/roach88/fieldquery/internal/filter"
	"github.com/roach88/fieldquery/internal/plan"
	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/value"
)

// Table aliases and reserved result aliases. Attribute names may not start
// with "__", so the reserved aliases never collide with attributes.
const (
	rootAlias   = "o"
	targetAlias = "t"

	parentAlias = "__parent"
	sortAlias   = "__sort"
)

// rootQuery selects one page of the root entity.
//
//	SELECT [DISTINCT] o.<root columns> [, o.<sort> AS __sort]
//	FROM <root> AS o [filter joins] WHERE <filter>
//	ORDER BY o.<sort>, o.<identity> LIMIT <size> OFFSET <offset>
func (r *Repository) rootQuery(p *plan.ColumnPlan, pred *filter.CompiledPredicate, order ordering, offset, size int) queryir.Select {
	sel := queryir.Select{
		From:     queryir.Table{Name: r.entity.Table, Alias: rootAlias},
		Distinct: len(p.Relations) > 0,
		Limit:    size,
		Offset:   offset,
	}
	for _, a := range p.Root {
		sel.Columns = append(sel.Columns, queryir.Column{Ref: queryir.Ref(rootAlias, a.Column), Alias: a.Name, Kind: a.Kind})
	}
	// DISTINCT on Postgres needs ORDER BY terms in the select list.
	if !p.HasRoot(order.attr.Name) {
		sel.Columns = append(sel.Columns, queryir.Column{Ref: queryir.Ref(rootAlias, order.attr.Column), Alias: sortAlias, Kind: order.attr.Kind})
	}

	if pred != nil {
		sel.Filter = pred.Bind(&sel, rootAlias)
		if pred.JoinsToMany() {
			sel.Distinct = true
		}
	}

	id := r.entity.Identity()
	sel.OrderBy = []queryir.Order{{Column: queryir.Ref(rootAlias, order.attr.Column), Kind: order.attr.Kind, Desc: order.desc}}
	if order.attr != id {
		sel.OrderBy = append(sel.OrderBy, queryir.Order{Column: queryir.Ref(rootAlias, id.Column), Kind: id.Kind})
	}
	return sel
}

// relationQuery selects the planned target columns of one relation for a
// set of root ids, with the owning root id under __parent.
//
//	SELECT t.<columns>, o.<identity> AS __parent
//	FROM <target> AS t JOIN ... <root> AS o
//	WHERE o.<identity> IN (<ids>) ORDER BY o.<identity>, t.<identity>
func (r *Repository) relationQuery(rp plan.RelationPlan, ids []value.Value) queryir.Select {
	id := r.entity.Identity()
	sel := queryir.Select{
		From: queryir.Table{Name: rp.Target.Table, Alias: targetAlias},
	}
	for _, a := range rp.Columns {
		sel.Columns = append(sel.Columns, queryir.Column{Ref: queryir.Ref(targetAlias, a.Column), Alias: a.Name, Kind: a.Kind})
	}
	sel.Columns = append(sel.Columns, queryir.Column{Ref: queryir.Ref(rootAlias, id.Column), Alias: parentAlias, Kind: id.Kind})

	plan.JoinOwner(&sel, rp.Attribute.Link(), r.entity, rootAlias, targetAlias)
	sel.Filter = queryir.In{Column: queryir.Ref(rootAlias, id.Column), Values: ids}
	sel.OrderBy = []queryir.Order{
		{Column: queryir.Ref(rootAlias, id.Column)},
		{Column: queryir.Ref(targetAlias, rp.Target.Identity().Column)},
	}
	return sel
}

// countQuery counts the distinct root identities matching pred.
func (r *Repository) countQuery(pred *filter.CompiledPredicate) queryir.Count {
	id := r.entity.Identity()
	sel := queryir.Select{
		From:     queryir.Table{Name: r.entity.Table, Alias: rootAlias},
		Columns:  []queryir.Column{{Ref: queryir.Ref(rootAlias, id.Column), Alias: id.Name, Kind: id.Kind}},
		Distinct: true,
	}
	if pred != nil {
		sel.Filter = pred.Bind(&sel, rootAlias)
	}
	return queryir.Count{Select: sel}
}
