package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldquery/internal/schema"
)

func TestRun_UserRoles(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/user_roles.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Responses, 5)

	admins := result.Responses[0]
	assert.Equal(t, []any{int64(1), int64(3)}, admins.IDs)
	rec, ok := admins.Items[0].(*schema.Record)
	require.True(t, ok)
	roles, ok := rec.Fields["roles"].([]*schema.Record)
	require.True(t, ok)
	assert.Len(t, roles, 2)

	bad := result.Responses[2]
	require.NotNil(t, bad.Error)
	assert.Equal(t, "FILTER_SYNTAX", bad.Error.Code)
	assert.Nil(t, bad.Items)
}

func TestRun_FailedExpectations(t *testing.T) {
	path := writeScenario(t, `
name: wrong
schema: schema.cue
seed: seed.sql
requests:
  - name: admins
    entity: User
    filter: roles.code==ADMIN
    expect:
      ids: [1, 2]
  - name: surprise_error
    entity: User
    filter: "age=="
  - name: missing_error
    entity: User
    expect:
      error: FILTER_TYPE
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "requests[0] admins: expectation failed: ids: expected [1 2], actual [1 3]")
	assert.Contains(t, result.Errors[1], "requests[1] surprise_error: expectation failed: error: expected success, actual FILTER_SYNTAX")
	assert.Contains(t, result.Errors[2], "requests[2] missing_error: expectation failed: error: expected FILTER_TYPE, actual success")
}

func TestRun_SetupAndLimits(t *testing.T) {
	path := writeScenario(t, `
name: limits
schema: schema.cue
seed: seed.sql
setup:
  - INSERT INTO us_role VALUES (4, 'GUEST', NULL)
max_page_size: 3
requests:
  - name: roles
    entity: Role
    columns: [code]
    expect:
      ids: [1, 2, 3, 4]
      fields: [id, code]
    size: 3
  - name: too_large
    entity: Role
    size: 10
    expect:
      error: INVALID_REQUEST
  - name: unknown_entity
    entity: Group
    expect:
      error: SCHEMA_ERROR
  - name: zero_size
    entity: Role
    size: 0
    expect:
      error: INVALID_REQUEST
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	// The page holds three of the four roles.
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected [1 2 3 4], actual [1 2 3]")
	assert.Equal(t, "INVALID_REQUEST", result.Responses[1].Error.Code)
	assert.Equal(t, "SCHEMA_ERROR", result.Responses[2].Error.Code)
	assert.Equal(t, "INVALID_REQUEST", result.Responses[3].Error.Code)
}

func TestRun_SeedFailure(t *testing.T) {
	path := writeScenario(t, `
name: broken_setup
schema: schema.cue
setup:
  - INSERT INTO missing_table VALUES (1)
requests:
  - name: all
    entity: User
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0]")
}
