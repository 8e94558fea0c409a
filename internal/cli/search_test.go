package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Text(t *testing.T) {
	args := append([]string{"search", "User",
		"--columns", "name,roles.code",
		"--filter", "roles.code==ADMIN",
	}, fixtureFlags(t)...)

	out, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"name":"alice","roles":[{"code":"ADMIN","id":1},{"code":"USER","id":2}]}`+"\n"+
			`{"id":3,"name":"carol","roles":[{"code":"ADMIN","id":1},{"code":"AUDITOR","id":3}]}`+"\n"+
			"2 results\n",
		out)
}

func TestSearch_JSONWithTotal(t *testing.T) {
	args := append([]string{"search", "User",
		"--columns", "name",
		"--filter", "age>=18",
		"--sort", "age",
		"--desc",
		"--size", "2",
		"--count",
		"--format", "json",
	}, fixtureFlags(t)...)

	out, _, err := execute(t, args...)
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   struct {
			Entity string
			Items  []map[string]any
			Total  *int64
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "User", resp.Data.Entity)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, map[string]any{"id": float64(6), "name": "frank"}, resp.Data.Items[0])
	assert.Equal(t, map[string]any{"id": float64(1), "name": "alice"}, resp.Data.Items[1])
	require.NotNil(t, resp.Data.Total)
	assert.Equal(t, int64(4), *resp.Data.Total)
}

func TestSearch_EmptyPage(t *testing.T) {
	args := append([]string{"search", "User", "--filter", "name==nobody"}, fixtureFlags(t)...)
	out, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "0 results\n", out)
}

func TestSearch_RejectedFilter(t *testing.T) {
	args := append([]string{"search", "User", "--filter", "age=like=3", "--format", "json"}, fixtureFlags(t)...)

	out, _, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FILTER_SYNTAX", resp.Error.Code)
}

func TestSearch_InvalidPaging(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative offset", []string{"--offset", "-1"}, "offset must not be negative"},
		{"explicit zero size", []string{"--size", "0"}, "page size must be positive, got 0"},
		{"negative size", []string{"--size", "-3"}, "page size must be positive, got -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{"search", "User"}, tt.args...), fixtureFlags(t)...)
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error [INVALID_REQUEST]")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestSearch_UnknownEntity(t *testing.T) {
	args := append([]string{"search", "Group"}, fixtureFlags(t)...)
	_, _, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown entity "Group"`)
}

func TestSearch_MissingSchema(t *testing.T) {
	_, _, err := execute(t, "search", "User", "--schema", "/nonexistent/schema.cue", "--db", ":memory:")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestSearch_Metrics(t *testing.T) {
	args := append([]string{"search", "User", "--columns", "name,roles.code", "--metrics"}, fixtureFlags(t)...)
	_, errOut, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, errOut, `fieldquery_queries_total{kind="root",status="ok"} 1`)
	assert.Contains(t, errOut, `fieldquery_queries_total{kind="relation",status="ok"} 1`)
	assert.Contains(t, errOut, `fieldquery_searches_total{code="OK",entity="User"} 1`)
}

func TestSearch_ParallelFromEnv(t *testing.T) {
	t.Setenv("FIELDQUERY_SEARCH_PARALLEL_RELATIONS", "true")
	t.Setenv("FIELDQUERY_SEARCH_WORKERS", "2")

	args := append([]string{"search", "User", "--columns", "name,roles.code,tickets.title", "--filter", "id==1"}, fixtureFlags(t)...)
	out, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"name":"alice","roles":[{"code":"ADMIN","id":1},{"code":"USER","id":2}],"tickets":[{"id":1,"title":"Login broken"},{"id":2,"title":"Add export"}]}`+"\n"+
			"1 result\n",
		out)
}

func TestCount(t *testing.T) {
	args := append([]string{"count", "User", "--filter", "roles.code=in=(ADMIN,USER)"}, fixtureFlags(t)...)
	out, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	args = append([]string{"count", "Ticket", "--format", "json"}, fixtureFlags(t)...)
	out, _, err = execute(t, args...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"entity":"Ticket","count":4}}`, out)
}

func TestCount_TypeError(t *testing.T) {
	args := append([]string{"count", "User", "--filter", "age==old"}, fixtureFlags(t)...)
	out, _, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [FILTER_TYPE]")
}
