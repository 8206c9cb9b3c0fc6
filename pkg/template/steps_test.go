package template

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcf/pkg/shell"
)

type fakeShell struct {
	calls  []string
	dirs   []string
	result *shell.Result
	err    error
}

func (f *fakeShell) Run(ctx context.Context, dir, command string) (*shell.Result, error) {
	f.calls = append(f.calls, command)
	f.dirs = append(f.dirs, dir)
	if f.result == nil {
		f.result = &shell.Result{}
	}
	return f.result, f.err
}

type recordingReporter struct {
	details  []string
	warnings []string
}

func (r *recordingReporter) StepDetail(msg string)  { r.details = append(r.details, msg) }
func (r *recordingReporter) StepWarning(msg string) { r.warnings = append(r.warnings, msg) }

func newStepContext(t *testing.T, vars map[string]string) (*StepContext, *fakeShell, *recordingReporter) {
	sh := &fakeShell{}
	rep := &recordingReporter{}
	return &StepContext{
		Vars:      vars,
		TargetDir: t.TempDir(),
		Shell:     sh,
		Reporter:  rep,
		Logger:    zerolog.Nop(),
	}, sh, rep
}

func TestCommandStep_Execute(t *testing.T) {
	sc, sh, rep := newStepContext(t, map[string]string{"name": "demo"})
	sh.result = &shell.Result{Stdout: "created demo\n"}

	step := &CommandStep{Command: "mkdir {{name}}"}
	require.NoError(t, step.Execute(context.Background(), sc))

	assert.Equal(t, []string{"mkdir demo"}, sh.calls)
	assert.Equal(t, []string{sc.TargetDir}, sh.dirs)
	assert.Equal(t, []string{"created demo"}, rep.details)
}

func TestCommandStep_Failure(t *testing.T) {
	sc, sh, _ := newStepContext(t, nil)
	sh.err = &shell.CommandError{Command: "false", Result: &shell.Result{Stderr: "boom", ExitCode: 1}, Err: errors.New("exit status 1")}

	err := (&CommandStep{Command: "false"}).Execute(context.Background(), sc)
	require.Error(t, err)

	var ce *shell.CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "boom", ce.Output())
}

func TestDirectoryStep_Execute(t *testing.T) {
	sc, _, rep := newStepContext(t, map[string]string{"project": "app"})

	step := &DirectoryStep{Path: "{{project}}/src/components"}
	require.NoError(t, step.Execute(context.Background(), sc))
	assert.DirExists(t, filepath.Join(sc.TargetDir, "app", "src", "components"))
	require.Len(t, rep.details, 1)
	assert.Contains(t, rep.details[0], "Created directory")

	// Existing directories are not an error.
	require.NoError(t, step.Execute(context.Background(), sc))
}

func TestDirectoryStep_AbsolutePath(t *testing.T) {
	sc, _, _ := newStepContext(t, nil)
	abs := filepath.Join(t.TempDir(), "elsewhere")

	require.NoError(t, (&DirectoryStep{Path: abs}).Execute(context.Background(), sc))
	assert.DirExists(t, abs)
	assert.NoDirExists(t, filepath.Join(sc.TargetDir, "elsewhere"))
}

func TestDirectoryStep_Failure(t *testing.T) {
	sc, _, _ := newStepContext(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(sc.TargetDir, "blocker"), []byte("x"), 0644))

	err := (&DirectoryStep{Path: "blocker/child"}).Execute(context.Background(), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestFileStep_ExecuteOverwrites(t *testing.T) {
	sc, _, _ := newStepContext(t, map[string]string{"name": "first"})
	step := &FileStep{Path: "docs/{{name}}.md", Content: "# {{name}}\n{{unknown}}"}

	require.NoError(t, step.Execute(context.Background(), sc))
	path := filepath.Join(sc.TargetDir, "docs", "first.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# first\n{{unknown}}", string(data))

	require.NoError(t, os.WriteFile(path, []byte("a much longer pre-existing body that must disappear"), 0644))
	sc.Vars = map[string]string{"name": "first", "unknown": "now known"}
	require.NoError(t, step.Execute(context.Background(), sc))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# first\nnow known", string(data))
}

func TestUnknownStep_Execute(t *testing.T) {
	sc, sh, rep := newStepContext(t, nil)

	step := &UnknownStep{Type: "archive"}
	require.NoError(t, step.Execute(context.Background(), sc))
	assert.Empty(t, sh.calls)
	require.Len(t, rep.warnings, 1)
	assert.Contains(t, rep.warnings[0], "Unknown step type: archive")
	assert.Empty(t, testDirEntries(t, sc.TargetDir))
}

func TestStepSummary(t *testing.T) {
	assert.Equal(t, "Install", (&CommandStep{Description: "Install", Command: "npm i"}).Summary())
	assert.Equal(t, "Run npm i", (&CommandStep{Command: "npm i"}).Summary())
	assert.Equal(t, "Create directory src", (&DirectoryStep{Path: "src"}).Summary())
	assert.Equal(t, "Create file a.txt", (&FileStep{Path: "a.txt"}).Summary())
	assert.Equal(t, "Executing step", (&UnknownStep{Type: "x"}).Summary())
}

func testDirEntries(t *testing.T, dir string) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}
