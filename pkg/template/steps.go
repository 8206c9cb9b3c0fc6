package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"mcf/pkg/shell"
)

const (
	KindCommand   = "command"
	KindDirectory = "directory"
	KindFile      = "file"
)

// Step is one unit of work in a template. Each variant carries its own
// side effects; unknown variants decode to UnknownStep.
type Step interface {
	Kind() string
	Summary() string
	Execute(ctx context.Context, sc *StepContext) error

	fields() map[string]any
}

// StepReporter receives progress lines produced while a step runs.
type StepReporter interface {
	StepDetail(msg string)
	StepWarning(msg string)
}

// StepContext is the execution state shared by the steps of a single run.
type StepContext struct {
	Vars      map[string]string
	TargetDir string
	Shell     shell.Runner
	Reporter  StepReporter
	Logger    zerolog.Logger
}

// Resolve substitutes path and anchors it to the target directory when it
// is relative.
func (sc *StepContext) Resolve(path string) string {
	p := Substitute(path, sc.Vars)
	if !filepath.IsAbs(p) {
		p = filepath.Join(sc.TargetDir, p)
	}
	return p
}

func (sc *StepContext) detail(format string, args ...any) {
	if sc.Reporter != nil {
		sc.Reporter.StepDetail(fmt.Sprintf(format, args...))
	}
}

func (sc *StepContext) warn(format string, args ...any) {
	if sc.Reporter != nil {
		sc.Reporter.StepWarning(fmt.Sprintf(format, args...))
	}
}

type CommandStep struct {
	Description string
	Command     string
}

func (s *CommandStep) Kind() string { return KindCommand }

func (s *CommandStep) Summary() string { return summary(s.Description, "Run "+s.Command) }

// Execute runs the substituted command through the shell in the target
// directory. A non-zero exit, a timeout or a launch failure is returned as
// a *shell.CommandError carrying the captured output.
func (s *CommandStep) Execute(ctx context.Context, sc *StepContext) error {
	command := Substitute(s.Command, sc.Vars)
	sc.Logger.Debug().Str("command", command).Str("dir", sc.TargetDir).Msg("running command step")

	res, err := sc.Shell.Run(ctx, sc.TargetDir, command)
	if err != nil {
		return err
	}

	if out := strings.TrimSpace(res.Stdout); out != "" {
		sc.detail("%s", out)
	}
	return nil
}

func (s *CommandStep) fields() map[string]any {
	return withDescription(map[string]any{"type": KindCommand, "command": s.Command}, s.Description)
}

type DirectoryStep struct {
	Description string
	Path        string
}

func (s *DirectoryStep) Kind() string { return KindDirectory }

func (s *DirectoryStep) Summary() string { return summary(s.Description, "Create directory "+s.Path) }

// Execute creates the directory and its parents. An existing directory is
// not an error.
func (s *DirectoryStep) Execute(ctx context.Context, sc *StepContext) error {
	dir := sc.Resolve(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	sc.detail("📁 Created directory: %s", dir)
	return nil
}

func (s *DirectoryStep) fields() map[string]any {
	return withDescription(map[string]any{"type": KindDirectory, "path": s.Path}, s.Description)
}

type FileStep struct {
	Description string
	Path        string
	Content     string
}

func (s *FileStep) Kind() string { return KindFile }

func (s *FileStep) Summary() string { return summary(s.Description, "Create file "+s.Path) }

// Execute writes the substituted content, replacing any existing file.
func (s *FileStep) Execute(ctx context.Context, sc *StepContext) error {
	path := sc.Resolve(s.Path)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(Substitute(s.Content, sc.Vars)), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	sc.detail("📄 Created file: %s", path)
	return nil
}

func (s *FileStep) fields() map[string]any {
	return withDescription(map[string]any{"type": KindFile, "path": s.Path, "content": s.Content}, s.Description)
}

// UnknownStep keeps a step whose type this version does not understand.
// Running it only emits a warning.
type UnknownStep struct {
	Type        string
	Description string
	Fields      map[string]any
}

func (s *UnknownStep) Kind() string { return s.Type }

func (s *UnknownStep) Summary() string { return summary(s.Description, "Executing step") }

func (s *UnknownStep) Execute(ctx context.Context, sc *StepContext) error {
	sc.Logger.Warn().Str("type", s.Type).Msg("skipping unknown step type")
	sc.warn("⚠️ Unknown step type: %s", s.Type)
	return nil
}

func (s *UnknownStep) fields() map[string]any {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	out["type"] = s.Type
	return withDescription(out, s.Description)
}

func summary(description, fallback string) string {
	if description != "" {
		return description
	}
	return fallback
}

func withDescription(m map[string]any, description string) map[string]any {
	if description != "" {
		m["description"] = description
	}
	return m
}
