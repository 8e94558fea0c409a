package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Comparison(t *testing.T) {
	tests := []struct {
		in   string
		want Comparison
	}{
		{"name==alice", Comparison{Selector: "name", Operator: OpEqual, Args: []string{"alice"}}},
		{"age=gt=18", Comparison{Selector: "age", Operator: OpGreater, Args: []string{"18"}}},
		{"age>18", Comparison{Selector: "age", Operator: OpGreater, Args: []string{"18"}}},
		{"age >= 18", Comparison{Selector: "age", Operator: OpGreaterEqual, Args: []string{"18"}}},
		{"age=LE=30", Comparison{Selector: "age", Operator: OpLessEqual, Args: []string{"30"}}},
		{"age<30", Comparison{Selector: "age", Operator: OpLess, Args: []string{"30"}}},
		{"roles.code!=ADMIN", Comparison{Selector: "roles.code", Operator: OpNotEqual, Args: []string{"ADMIN"}}},
		{"country=in=(US, UK)", Comparison{Selector: "country", Operator: OpIn, Args: []string{"US", "UK"}}},
		{"country=out=DE", Comparison{Selector: "country", Operator: OpOut, Args: []string{"DE"}}},
		{"age=isnull=true", Comparison{Selector: "age", Operator: OpIsNull, Args: []string{"true"}}},
		{`address=="1 Main St"`, Comparison{Selector: "address", Operator: OpEqual, Args: []string{"1 Main St"}}},
		{`name=='o\'brien'`, Comparison{Selector: "name", Operator: OpEqual, Args: []string{"o'brien"}}},
		{"createdAt=ge=2024-02-01T00:00:00Z", Comparison{Selector: "createdAt", Operator: OpGreaterEqual, Args: []string{"2024-02-01T00:00:00Z"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := Parse(tt.in)
			require.NoError(t, err)
			got, ok := n.(Comparison)
			require.True(t, ok, "got %T", n)
			got.Pos = 0
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	n, err := Parse("a==1;b==2,c==3")
	require.NoError(t, err)

	or, ok := n.(Logical)
	require.True(t, ok)
	assert.Equal(t, Or, or.Op)
	require.Len(t, or.Children, 2)

	and, ok := or.Children[0].(Logical)
	require.True(t, ok)
	assert.Equal(t, And, and.Op)
	assert.Len(t, and.Children, 2)
	assert.Equal(t, "a==1;b==2,c==3", n.String())
}

func TestParse_GroupsAndKeywords(t *testing.T) {
	n, err := Parse("name==al* and (country==US or country==UK)")
	require.NoError(t, err)

	and, ok := n.(Logical)
	require.True(t, ok)
	assert.Equal(t, And, and.Op)
	require.Len(t, and.Children, 2)

	or, ok := and.Children[1].(Logical)
	require.True(t, ok)
	assert.Equal(t, Or, or.Op)
	assert.Equal(t, "name==al*;(country==US,country==UK)", n.String())
}

func TestParse_KeywordInsideValue(t *testing.T) {
	n, err := Parse("name==brandon")
	require.NoError(t, err)
	assert.Equal(t, []string{"brandon"}, n.(Comparison).Args)

	n, err = Parse(`title=="bugs and typos"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"bugs and typos"}, n.(Comparison).Args)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"   ", 0},
		{"name", 4},
		{"name==", 6},
		{"name=~alice", 4},
		{"name=like=al", 4},
		{"==alice", 0},
		{"()", 0},
		{"(name==a", 0},
		{"name==a;", 8},
		{"name==a,,b==c", 8},
		{"age==(1,2)", 3},
		{"country=in=()", 12},
		{"country=in=(US", 11},
		{`name=="open`, 6},
		{"roles.users.name==x", 0},
		{"roles..code==x", 0},
		{"name==a)", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos, se.Error())
			assert.True(t, IsSyntaxError(err))
			assert.False(t, IsTypeError(err))
		})
	}
}

func TestComparison_StringQuotes(t *testing.T) {
	c := Comparison{Selector: "address", Operator: OpIn, Args: []string{"1 Main St", `say "hi"`, "plain"}}
	assert.Equal(t, `address=in=("1 Main St","say \"hi\"",plain)`, c.String())

	n, err := Parse(c.String())
	require.NoError(t, err)
	assert.Equal(t, c.Args, n.(Comparison).Args)
}
