package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcf/pkg/config"
	"mcf/pkg/template"
	"mcf/pkg/testutil"
	"mcf/pkg/variables"
)

type testEnv struct {
	configPath   string
	templatesDir string
	dbPath       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		configPath:   filepath.Join(root, "config.yaml"),
		templatesDir: filepath.Join(root, "templates"),
		dbPath:       filepath.Join(root, "state", "history.db"),
	}
	config := fmt.Sprintf("templates_dir: %s\ncommand_timeout: 30s\ntelemetry:\n  enabled: true\n  db_path: %s\n", env.templatesDir, env.dbPath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(config), 0644))
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const serviceTemplate = `{
  "name": "service",
  "description": "Minimal service layout",
  "category": "backend",
  "variables": [
    {"name": "name", "prompt": "Service name", "validation": "[a-z]+"},
    {"name": "env", "prompt": "Environment", "default": "dev", "options": ["dev", "prod"]}
  ],
  "prerequisites": ["sh"],
  "steps": [
    {"type": "directory", "path": "{{name}}"},
    {"type": "file", "path": "{{name}}/config.env", "content": "NAME={{name}}\nENV={{env}}\n"},
    {"type": "command", "description": "Say hello", "command": "echo hello {{name}}"}
  ],
  "documentation": {"nextSteps": ["cd {{name}}"]}
}`

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"list", "init", "info", "add", "history", "stats", "telemetry"} {
		assert.Contains(t, names, want)
	}
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates found")
}

func TestList_Templates(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)
	testutil.WriteTemplate(t, env.templatesDir, "docs.yaml", "name: docs\nsteps: []\n")
	testutil.WriteTemplate(t, env.templatesDir, "broken.json", "{")

	out, stderr, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "docs            - No description")
	assert.Contains(t, out, "service         - Minimal service layout")
	assert.Contains(t, out, "Total: 2 templates")
	assert.Less(t, strings.Index(out, "docs"), strings.Index(out, "service"))
	assert.Contains(t, stderr, "broken.json")

	out, _, err = env.run(t, "", "list", "--category", "backend")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1 templates")
	assert.NotContains(t, out, "docs")
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)

	out, _, err := env.run(t, "", "info", "service")
	require.NoError(t, err)
	assert.Contains(t, out, "Template: service")
	assert.Contains(t, out, "Description: Minimal service layout")
	assert.Contains(t, out, "Category: backend")
	assert.Contains(t, out, "Prerequisites: sh")
	assert.Contains(t, out, "• name: Service name")
	assert.Contains(t, out, "Steps: 3")
}

func TestInfo_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "", "info", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, template.ErrNotFound))
	assert.Equal(t, "template 'ghost' not found", err.Error())
}

func TestInit_PromptsFromStdin(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)
	target := t.TempDir()

	out, _, err := env.run(t, "Bad-Name\napi\nstaging\n\n", "init", "service", "--dir", target)
	require.NoError(t, err)

	assert.Contains(t, out, "Service name: ")
	assert.Contains(t, out, "Invalid format (expected: [a-z]+)")
	assert.Contains(t, out, "Must be one of: dev, prod")
	assert.Contains(t, out, "hello api")
	assert.Contains(t, out, "cd {{name}}")
	assert.Contains(t, out, "executed successfully")

	data, err := os.ReadFile(filepath.Join(target, "api", "config.env"))
	require.NoError(t, err)
	assert.Equal(t, "NAME=api\nENV=dev\n", string(data))
}

func TestInit_NoInputWithVars(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)
	target := t.TempDir()

	_, _, err := env.run(t, "", "init", "service", "--dir", target, "--no-input", "--var", "name=web", "--var", "env=prod")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(target, "web", "config.env"))
	require.NoError(t, err)
	assert.Equal(t, "NAME=web\nENV=prod\n", string(data))
}

func TestInit_NoInputMissingValue(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)
	target := t.TempDir()

	_, _, err := env.run(t, "", "init", "service", "--dir", target, "--no-input")
	require.Error(t, err)
	assert.Empty(t, testutil.DirEntries(t, target))
}

func TestInit_InvalidVar(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "", "init", "service", "--var", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid --var "novalue"`)
}

func TestInit_StepFailure(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "fails.json", `{
  "name": "fails",
  "steps": [
    {"type": "directory", "path": "first"},
    {"type": "command", "command": "echo broken >&2; exit 3"},
    {"type": "file", "path": "third.txt"}
  ]
}`)
	target := t.TempDir()

	out, _, err := env.run(t, "", "init", "fails", "--dir", target)
	require.Error(t, err)

	var se *silentError
	assert.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, template.ErrStepFailed))
	assert.Contains(t, out, "Error: broken")
	assert.Contains(t, out, "Template execution failed at step 2")
	assert.Equal(t, []string{"first"}, testutil.DirEntries(t, target))
}

func TestAdd(t *testing.T) {
	env := newTestEnv(t)
	src := testutil.WriteTemplate(t, t.TempDir(), "service.yaml", `
name: service
steps:
  - type: directory
    path: src
`)

	out, _, err := env.run(t, "", "add", src, "--name", "svc")
	require.NoError(t, err)
	assert.Contains(t, out, "Template saved")
	assert.FileExists(t, filepath.Join(env.templatesDir, "svc.json"))

	out, _, err = env.run(t, "", "info", "svc")
	require.NoError(t, err)
	assert.Contains(t, out, "Steps: 1")
}

func TestAdd_RejectsInvalidDocument(t *testing.T) {
	env := newTestEnv(t)
	src := testutil.WriteTemplate(t, t.TempDir(), "bad.json", `{"steps": []}`)

	_, _, err := env.run(t, "", "add", src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, template.ErrMalformedDocument))
	assert.NoDirExists(t, env.templatesDir)
}

func TestHistoryAndStats(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)

	out, _, err := env.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, _, err = env.run(t, "", "init", "service", "--dir", t.TempDir(), "--no-input", "--var", "name=api")
	require.NoError(t, err)
	_, _, err = env.run(t, "", "init", "ghost", "--dir", t.TempDir())
	require.Error(t, err)

	helper := testutil.NewSQLiteTestHelper(t, env.dbPath)
	assert.Equal(t, 2, helper.Count(t, "runs"))
	assert.True(t, helper.RowExists(t, "runs", "template_id = ? AND stage = ?", "ghost", "loading"))

	out, _, err = env.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "service")
	assert.Contains(t, out, "3/3")
	assert.Contains(t, out, "failed: loading")

	out, _, err = env.run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Runs in the last 7 days: 2")
	assert.Contains(t, out, "Success rate: 50.0%")
	assert.Contains(t, out, "loading")
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"name=api", "url=http://x?a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "api", "url": "http://x?a=b"}, vars)

	_, err = parseVars([]string{"=value"})
	assert.Error(t, err)
}

func TestList_BrokenConfigFallsBackToDefaults(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("templates_dir: [unclosed"), 0644))
	templatesDir := t.TempDir()
	testutil.WriteTemplate(t, templatesDir, "docs.json", `{"name": "docs"}`)

	out, stderr, err := env.run(t, "", "list", "--templates-dir", templatesDir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "failed to parse config")
	assert.Contains(t, stderr, "using default settings")
	assert.Contains(t, out, "Total: 1 templates")
}

func TestHistory_Since(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)

	for _, name := range []string{"one", "two", "three"} {
		_, _, err := env.run(t, "", "init", "service", "--dir", t.TempDir(), "--no-input", "--var", "name="+name)
		require.NoError(t, err)
	}

	out, _, err := env.run(t, "", "history", "--since", "1h", "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4, "header, rule and two runs")

	out, _, err = env.run(t, "", "history", "--since", "1ns")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestTelemetryDisable(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTemplate(t, env.templatesDir, "service.json", serviceTemplate)

	out, _, err := env.run(t, "", "telemetry", "disable")
	require.NoError(t, err)
	assert.Contains(t, out, "Run history disabled")

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, env.templatesDir, cfg.TemplatesDir)
	assert.Equal(t, env.dbPath, cfg.Telemetry.DBPath)

	_, _, err = env.run(t, "", "init", "service", "--dir", t.TempDir(), "--no-input", "--var", "name=api")
	require.NoError(t, err)
	assert.NoFileExists(t, env.dbPath)

	out, _, err = env.run(t, "", "telemetry", "enable")
	require.NoError(t, err)
	assert.Contains(t, out, env.dbPath)

	cfg, err = config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestSelectSource(t *testing.T) {
	in, out := strings.NewReader(""), &bytes.Buffer{}

	assert.IsType(t, &variables.LineSource{}, selectSource(false, in, out, false, true))
	assert.IsType(t, &variables.LineSource{}, selectSource(true, in, out, true, false))

	form, ok := selectSource(true, in, out, false, true).(*variables.FormSource)
	require.True(t, ok)
	assert.True(t, form.Accessible)
}
