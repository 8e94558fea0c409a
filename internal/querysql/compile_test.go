package querysql

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldquery/internal/queryir"
	"github.com/roach88/fieldquery/internal/value"
)

func rootSelect() queryir.Select {
	return queryir.Select{
		From: queryir.Table{Name: "us_user", Alias: "o"},
		Columns: []queryir.Column{
			{Ref: queryir.Ref("o", "id"), Alias: "id", Kind: value.KindInteger},
			{Ref: queryir.Ref("o", "name"), Alias: "name", Kind: value.KindText},
		},
		Joins: []queryir.Join{
			{
				Kind:  queryir.LeftJoin,
				Table: queryir.Table{Name: "us_user_role", Alias: "f1_via"},
				On:    []queryir.On{{Left: queryir.Ref("f1_via", "user_id"), Right: queryir.Ref("o", "id")}},
			},
			{
				Kind:  queryir.LeftJoin,
				Table: queryir.Table{Name: "us_role", Alias: "f1"},
				On:    []queryir.On{{Left: queryir.Ref("f1", "id"), Right: queryir.Ref("f1_via", "role_id")}},
			},
		},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Column: queryir.Ref("f1", "code"), Op: queryir.OpEq, Value: value.Text("ADMIN")},
			queryir.Compare{Column: queryir.Ref("o", "age"), Op: queryir.OpGe, Value: value.Int(18)},
		}},
		Distinct: true,
		OrderBy:  []queryir.Order{{Column: queryir.Ref("o", "id")}},
		Limit:    10,
		Offset:   20,
	}
}

func dependentSelect() queryir.Select {
	return queryir.Select{
		From: queryir.Table{Name: "us_role", Alias: "t"},
		Columns: []queryir.Column{
			{Ref: queryir.Ref("o", "id"), Alias: "__parent", Kind: value.KindInteger},
			{Ref: queryir.Ref("t", "id"), Alias: "id", Kind: value.KindInteger},
			{Ref: queryir.Ref("t", "code"), Alias: "code", Kind: value.KindText},
		},
		Joins: []queryir.Join{
			{
				Kind:  queryir.InnerJoin,
				Table: queryir.Table{Name: "us_user_role", Alias: "l"},
				On:    []queryir.On{{Left: queryir.Ref("l", "role_id"), Right: queryir.Ref("t", "id")}},
			},
			{
				Kind:  queryir.InnerJoin,
				Table: queryir.Table{Name: "us_user", Alias: "o"},
				On:    []queryir.On{{Left: queryir.Ref("o", "id"), Right: queryir.Ref("l", "user_id")}},
			},
		},
		Filter: queryir.In{Column: queryir.Ref("o", "id"), Values: []value.Value{value.Int(1), value.Int(2), value.Int(3)}},
		OrderBy: []queryir.Order{
			{Column: queryir.Ref("o", "id")},
			{Column: queryir.Ref("t", "id")},
		},
	}
}

func countQuery() queryir.Count {
	return queryir.Count{Select: queryir.Select{
		From:    queryir.Table{Name: "us_user", Alias: "o"},
		Columns: []queryir.Column{{Ref: queryir.Ref("o", "id"), Alias: "id", Kind: value.KindInteger}},
		Filter: queryir.Or{Predicates: []queryir.Predicate{
			queryir.Like{Column: queryir.Ref("o", "name"), Pattern: "al%"},
			queryir.IsNull{Column: queryir.Ref("o", "age")},
		}},
		OrderBy: []queryir.Order{{Column: queryir.Ref("o", "id")}},
		Limit:   5,
	}}
}

func render(sql string, params []any) []byte {
	return []byte(fmt.Sprintf("%s\n%v\n", sql, params))
}

func TestCompile_Golden(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   queryir.Query
	}{
		{"root_select_sqlite", SQLite, rootSelect()},
		{"root_select_postgres", Postgres, rootSelect()},
		{"dependent_select_sqlite", SQLite, dependentSelect()},
		{"count_sqlite", SQLite, countQuery()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := NewSQLCompiler(tt.dialect).Compile(tt.query)
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, render(sql, params))
		})
	}
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	sql, params, err := NewSQLCompiler(SQLite).Compile(rootSelect())
	require.NoError(t, err)
	assert.NotContains(t, sql, "ADMIN")
	assert.Equal(t, []any{"ADMIN", int64(18), 10, 20}, params)
}

func TestCompile_DefaultOrder(t *testing.T) {
	sel := rootSelect()
	sel.OrderBy = nil
	sel.Joins = nil
	sel.Filter = nil
	sel.Limit = 0
	sel.Offset = 0
	sel.Distinct = false

	sql, params, err := NewSQLCompiler(SQLite).Compile(sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "o"."id" AS "id", "o"."name" AS "name" FROM "us_user" AS "o" ORDER BY "o"."id" ASC`, sql)
	assert.Empty(t, params)
}

func TestCompile_OffsetWithoutLimit(t *testing.T) {
	sel := dependentSelect()
	sel.Filter = nil
	sel.Offset = 5

	sql, _, err := NewSQLCompiler(SQLite).Compile(sel)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT -1 OFFSET ?")

	sql, _, err = NewSQLCompiler(Postgres).Compile(sel)
	require.NoError(t, err)
	assert.NotContains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET $1")
}

func TestCompile_Predicates(t *testing.T) {
	col := queryir.Ref("o", "age")
	tests := []struct {
		name string
		pred queryir.Predicate
		want string
	}{
		{"not equal", queryir.Compare{Column: col, Op: queryir.OpNe, Value: value.Int(1)}, `"o"."age" <> ?`},
		{"not in", queryir.In{Column: col, Values: []value.Value{value.Int(1)}, Negate: true}, `"o"."age" NOT IN (?)`},
		{"empty in", queryir.In{Column: col}, `1 = 0`},
		{"empty not in", queryir.In{Column: col, Negate: true}, `1 = 1`},
		{"not like", queryir.Like{Column: col, Pattern: "%x", Negate: true}, `"o"."age" NOT LIKE ? ESCAPE '\'`},
		{"is not null", queryir.IsNull{Column: col, Negate: true}, `"o"."age" IS NOT NULL`},
		{"empty and", queryir.And{}, `1 = 1`},
		{"empty or", queryir.Or{}, `1 = 0`},
		{"nested", queryir.Or{Predicates: []queryir.Predicate{
			queryir.And{Predicates: []queryir.Predicate{
				queryir.IsNull{Column: col},
				queryir.IsNull{Column: col, Negate: true},
			}},
			queryir.IsNull{Column: col},
		}}, `(("o"."age" IS NULL AND "o"."age" IS NOT NULL) OR "o"."age" IS NULL)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := queryir.Select{
				From:    queryir.Table{Name: "us_user", Alias: "o"},
				Columns: []queryir.Column{{Ref: queryir.Ref("o", "id"), Alias: "id"}},
				Filter:  tt.pred,
			}
			sql, _, err := NewSQLCompiler(SQLite).Compile(sel)
			require.NoError(t, err)
			assert.Contains(t, sql, " WHERE "+tt.want+" ORDER BY")
		})
	}
}

func TestCompile_TimestampOperands(t *testing.T) {
	col := queryir.Ref("o", "created_at")
	ts := value.Time(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	sel := queryir.Select{
		From:    queryir.Table{Name: "us_user", Alias: "o"},
		Columns: []queryir.Column{{Ref: queryir.Ref("o", "id"), Alias: "id"}},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Column: col, Op: queryir.OpGe, Value: ts},
			queryir.In{Column: col, Values: []value.Value{ts}},
		}},
		OrderBy: []queryir.Order{{Column: col, Kind: value.KindTimestamp, Desc: true}},
	}

	sql, args, err := NewSQLCompiler(SQLite).Compile(sel)
	require.NoError(t, err)
	norm := `strftime('%Y-%m-%d %H:%M:%f', "o"."created_at")`
	assert.Equal(t, `SELECT "o"."id" AS "id" FROM "us_user" AS "o" WHERE (`+norm+` >= ? AND `+norm+` IN (?)) ORDER BY `+norm+` DESC`, sql)
	assert.Equal(t, []any{"2025-05-01 12:00:00.000", "2025-05-01 12:00:00.000"}, args)

	sql, _, err = NewSQLCompiler(Postgres).Compile(sel)
	require.NoError(t, err)
	assert.NotContains(t, sql, "strftime")
	assert.Contains(t, sql, `"o"."created_at" >= $1`)
}

func TestCompile_Errors(t *testing.T) {
	c := NewSQLCompiler(SQLite)

	_, _, err := c.Compile(nil)
	assert.Error(t, err)

	_, _, err = c.Compile(queryir.Select{From: queryir.Table{Name: "t", Alias: "t"}})
	assert.Error(t, err)

	sel := rootSelect()
	sel.Joins[0].On = nil
	_, _, err = c.Compile(sel)
	assert.Error(t, err)
}

func TestDialect_Param(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("x", 3600))
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	got, err := SQLite.Param(value.Time(ts))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 09:30:00.000", got)

	got, err = Postgres.Param(value.Time(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got.(time.Time)))

	got, err = SQLite.Param(value.UUID(id))
	require.NoError(t, err)
	assert.Equal(t, id.String(), got)

	got, err = SQLite.Param(value.Null{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDialectFor(t *testing.T) {
	for driver, want := range map[string]Dialect{
		"sqlite3": SQLite,
		"sqlite":  SQLite,
		"pgx":     Postgres,
	} {
		got, err := DialectFor(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := DialectFor("mysql")
	assert.Error(t, err)
}
