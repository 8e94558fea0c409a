package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fieldquery/internal/schema"
)

func count(n int64) *int64 { return &n }

func record(fields map[string]any) *schema.Record {
	r := schema.NewRecord("User")
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

func TestEvaluateExpectation(t *testing.T) {
	ok := Response{
		Count: count(2),
		Items: []any{
			record(map[string]any{"id": int64(1), "name": "alice"}),
			record(map[string]any{"id": int64(3), "name": "carol"}),
		},
		IDs: []any{int64(1), int64(3)},
	}
	failed := Response{Error: &ResponseError{Code: "FILTER_TYPE", Message: "bad"}}

	tests := []struct {
		name   string
		expect *ExpectClause
		resp   Response
		want   []string
	}{
		{"no expectation", nil, ok, nil},
		{"matching ids", &ExpectClause{IDs: []any{1, 3}}, ok, nil},
		{"wrong order", &ExpectClause{IDs: []any{3, 1}}, ok,
			[]string{"expectation failed: ids: expected [3 1], actual [1 3]"}},
		{"matching count", &ExpectClause{Count: count(2)}, ok, nil},
		{"wrong count", &ExpectClause{Count: count(5)}, ok,
			[]string{"expectation failed: count: expected 5, actual 2"}},
		{"matching fields", &ExpectClause{Fields: []string{"name", "id"}}, ok, nil},
		{"extra field", &ExpectClause{Fields: []string{"id"}}, ok,
			[]string{"expectation failed: fields: expected [id], actual [id name] at item 0"}},
		{"several failures", &ExpectClause{IDs: []any{1}, Count: count(1)}, ok, []string{
			"expectation failed: ids: expected [1], actual [1 3]",
			"expectation failed: count: expected 1, actual 2",
		}},
		{"expected error", &ExpectClause{Error: "FILTER_TYPE"}, failed, nil},
		{"unexpected error", nil, failed,
			[]string{"expectation failed: error: expected success, actual FILTER_TYPE (bad)"}},
		{"wrong error", &ExpectClause{Error: "FILTER_SYNTAX"}, failed,
			[]string{"expectation failed: error: expected FILTER_SYNTAX, actual FILTER_TYPE (bad)"}},
		{"missing error", &ExpectClause{Error: "FILTER_SYNTAX", IDs: []any{9}}, ok,
			[]string{"expectation failed: error: expected FILTER_SYNTAX, actual success"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateExpectation(RequestStep{Expect: tt.expect}, tt.resp)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssertFields_NonRecord(t *testing.T) {
	resp := Response{Items: []any{struct{}{}}}
	err := assertFields(&ExpectClause{Fields: []string{"id"}}, resp)
	var ae *AssertionError
	assert.ErrorAs(t, err, &ae)
	assert.Equal(t, ExpectFields, ae.Type)
}
