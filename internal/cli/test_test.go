package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldquery/internal/testutil"
)

const passingScenario = `
name: admins
schema: schema.cue
seed: seed.sql
requests:
  - name: admins
    entity: User
    columns: [name]
    filter: roles.code==ADMIN
    expect:
      ids: [1, 3]
`

const failingScenario = `
name: wrong_admins
schema: schema.cue
seed: seed.sql
requests:
  - name: admins
    entity: User
    filter: roles.code==ADMIN
    expect:
      count: 5
`

// scenarioDir writes the fixture schema, seed and the given scenarios.
func scenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.cue"), []byte(testutil.SchemaCUE), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.sql"), []byte(testutil.SeedSQL), 0644))
	for name, body := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, err = runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassing(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"admins.yaml": passingScenario})

	out, err := runTestCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ admins")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NoFileExists(t, filepath.Join(dir, "golden", "admins.golden"))
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"admins.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "admins.golden")

	_, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name": "admins"`)
	assert.Contains(t, string(golden), `"name": "carol"`)

	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0644))
	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "do not match golden file")
}

func TestTestCommandFailingJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"admins.yaml":       passingScenario,
		"wrong-admins.yaml": failingScenario,
		"broken.yaml":       "name: broken\n",
	})

	out, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	var response struct {
		Status string
		Data   SuiteResult
		Error  *CLIError
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 3, response.Data.Total)
	assert.Equal(t, 1, response.Data.Passed)
	assert.Equal(t, 2, response.Data.Failed)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeTestFailed, response.Error.Code)

	byName := make(map[string]ScenarioOutcome)
	for _, s := range response.Data.Scenarios {
		byName[s.Name] = s
	}
	assert.Contains(t, byName["broken.yaml"].Errors[0], "failed to load scenario")
	assert.Contains(t, byName["wrong_admins"].Errors[0], "expectation failed: count: expected 5, actual 2")
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"admins.yaml":       passingScenario,
		"wrong-admins.yaml": failingScenario,
	})

	out, err := runTestCommand(t, "text", dir, "--filter", "adm*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(tmpDir, "test*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "admins.golden"),
		goldenFilePath(filepath.Join("scenarios", "admins.yaml")))
}

func TestSuiteResultRenderText(t *testing.T) {
	var suite SuiteResult
	suite.add(ScenarioOutcome{Name: "admins", Pass: true})
	suite.add(ScenarioOutcome{Name: "broken", Errors: []string{"boom"}})

	buf := &bytes.Buffer{}
	require.NoError(t, suite.RenderText(buf))
	assert.Equal(t, "✓ admins\n✗ broken\n  boom\n\nTest Summary: 1 passed, 1 failed, 2 total\n", buf.String())
}

func TestSuiteResultRenderText_WriteFailure(t *testing.T) {
	var suite SuiteResult
	suite.add(ScenarioOutcome{Name: "admins", Pass: true})

	assert.ErrorContains(t, suite.RenderText(brokenWriter{}), "broken pipe")
}
