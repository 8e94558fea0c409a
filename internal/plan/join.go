package plan

import (
	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/schema"
)

// ViaSuffix is appended to a target alias to name its association table.
const ViaSuffix = "_via"

// JoinTarget joins the target of a relation to sel, walking from the owner
// (ownerAlias) to the target, which is added under alias. Links through an
// association table add it under alias+ViaSuffix first.
func JoinTarget(sel *queryir.Select, kind queryir.JoinKind, link schema.Link, ownerAlias string, target *schema.EntitySchema, alias string) {
	if link.Through() {
		via := alias + ViaSuffix
		sel.Joins = append(sel.Joins,
			queryir.Join{
				Kind:  kind,
				Table: queryir.Table{Name: link.Via, Alias: via},
				On:    []queryir.On{{Left: queryir.Ref(via, link.OwnerColumn), Right: queryir.Ref(ownerAlias, link.OwnerKey)}},
			},
			queryir.Join{
				Kind:  kind,
				Table: queryir.Table{Name: target.Table, Alias: alias},
				On:    []queryir.On{{Left: queryir.Ref(alias, link.TargetKey), Right: queryir.Ref(via, link.TargetColumn)}},
			},
		)
		return
	}
	sel.Joins = append(sel.Joins, queryir.Join{
		Kind:  kind,
		Table: queryir.Table{Name: target.Table, Alias: alias},
		On:    []queryir.On{{Left: queryir.Ref(alias, link.TargetColumn), Right: queryir.Ref(ownerAlias, link.OwnerColumn)}},
	})
}

// JoinOwner is the reverse walk used by dependent queries: sel reads the
// target under targetAlias and the owner is inner-joined under ownerAlias.
func JoinOwner(sel *queryir.Select, link schema.Link, owner *schema.EntitySchema, ownerAlias, targetAlias string) {
	if link.Through() {
		via := ownerAlias + ViaSuffix
		sel.Joins = append(sel.Joins,
			queryir.Join{
				Kind:  queryir.InnerJoin,
				Table: queryir.Table{Name: link.Via, Alias: via},
				On:    []queryir.On{{Left: queryir.Ref(via, link.TargetColumn), Right: queryir.Ref(targetAlias, link.TargetKey)}},
			},
			queryir.Join{
				Kind:  queryir.InnerJoin,
				Table: queryir.Table{Name: owner.Table, Alias: ownerAlias},
				On:    []queryir.On{{Left: queryir.Ref(ownerAlias, link.OwnerKey), Right: queryir.Ref(via, link.OwnerColumn)}},
			},
		)
		return
	}
	sel.Joins = append(sel.Joins, queryir.Join{
		Kind:  queryir.InnerJoin,
		Table: queryir.Table{Name: owner.Table, Alias: ownerAlias},
		On:    []queryir.On{{Left: queryir.Ref(ownerAlias, link.OwnerColumn), Right: queryir.Ref(targetAlias, link.TargetColumn)}},
	})
}
