// Package runner drives a template from loading to completion.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mcf/pkg/shell"
	"mcf/pkg/template"
	"mcf/pkg/variables"
)

type State string

const (
	StateLoading               State = "loading"
	StateCollectingVariables   State = "collecting_variables"
	StateCheckingPrerequisites State = "checking_prerequisites"
	StateExecutingSteps        State = "executing_steps"
	StatePostInstall           State = "post_install"
	StateDone                  State = "done"
	StateAborted               State = "aborted"
)

type Loader interface {
	Load(id string) (*template.Template, error)
}

type Collector interface {
	Collect(ctx context.Context, t *template.Template) (map[string]string, error)
}

// Recorder persists the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Result describes a finished run, successful or not.
type Result struct {
	RunID               string
	TemplateID          string
	TemplateName        string
	TargetDir           string
	State               State
	AbortedIn           State
	StepsTotal          int
	StepsCompleted      int
	FailedStep          int
	PostInstallFailures []string
	StartedAt           time.Time
	Duration            time.Duration
	Err                 error
}

func (r *Result) Success() bool { return r.State == StateDone }

type Config struct {
	Store     Loader
	Collector Collector
	Checker   shell.Checker
	Shell     shell.Runner
	Reporter  Reporter
	Recorder  Recorder
	Logger    zerolog.Logger
}

type Runner struct {
	store     Loader
	collector Collector
	checker   shell.Checker
	shell     shell.Runner
	reporter  Reporter
	recorder  Recorder
	logger    zerolog.Logger
}

func New(cfg Config) *Runner {
	r := &Runner{
		store:     cfg.Store,
		collector: cfg.Collector,
		checker:   cfg.Checker,
		shell:     cfg.Shell,
		reporter:  cfg.Reporter,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
	}
	if r.collector == nil {
		// Without a configured source only defaults can be collected.
		r.collector = variables.NewCollector(variables.NewPresetSource(nil, nil), cfg.Logger)
	}
	if r.checker == nil {
		r.checker = shell.PathChecker{}
	}
	if r.shell == nil {
		r.shell = shell.NewExecRunner(shell.DefaultTimeout)
	}
	if r.reporter == nil {
		r.reporter = NopReporter{}
	}
	return r
}

// Run executes template id against targetDir. Steps run in order and the
// first failure aborts the run; earlier side effects are left in place.
// Post-install commands are best-effort. The returned Result is never nil.
func (r *Runner) Run(ctx context.Context, id, targetDir string) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		TemplateID: id,
		StartedAt:  time.Now(),
	}

	err := r.run(ctx, id, targetDir, res)
	res.Duration = time.Since(res.StartedAt)
	if err != nil {
		res.AbortedIn = res.State
		res.Err = err
		r.transition(res, StateAborted)
		r.logger.Debug().Err(err).Str("run_id", res.RunID).Str("stage", string(res.AbortedIn)).Msg("run aborted")
	}

	if r.recorder != nil {
		if rerr := r.recorder.Record(ctx, res); rerr != nil {
			r.logger.Warn().Err(rerr).Str("run_id", res.RunID).Msg("failed to record run")
		}
	}

	return res, err
}

func (r *Runner) run(ctx context.Context, id, targetDir string, res *Result) error {
	r.transition(res, StateLoading)
	t, err := r.store.Load(id)
	if err != nil {
		return err
	}
	res.TemplateName = t.Name
	res.StepsTotal = len(t.Steps)

	if targetDir == "" {
		targetDir = "."
	}
	dir, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}
	res.TargetDir = dir

	r.transition(res, StateCollectingVariables)
	vars := map[string]string{}
	if len(t.Variables) > 0 {
		r.reporter.Configuring(t)
		vars, err = r.collector.Collect(ctx, t)
		if err != nil {
			return err
		}
	}

	r.reporter.Initializing(t)

	r.transition(res, StateCheckingPrerequisites)
	if len(t.Prerequisites) > 0 {
		r.reporter.CheckingPrerequisites()
		for _, name := range t.Prerequisites {
			if !r.checker.Check(name) {
				return &template.PrerequisiteError{Name: name}
			}
		}
		r.reporter.PrerequisitesSatisfied()
	}

	r.transition(res, StateExecutingSteps)
	sc := &template.StepContext{
		Vars:      vars,
		TargetDir: dir,
		Shell:     r.shell,
		Reporter:  r.reporter,
		Logger:    r.logger,
	}
	for i, step := range t.Steps {
		r.reporter.StepStarted(i+1, step)
		if err := step.Execute(ctx, sc); err != nil {
			res.FailedStep = i + 1
			return stepError(i+1, step, err)
		}
		res.StepsCompleted++
	}

	r.transition(res, StatePostInstall)
	if len(t.PostInstall) > 0 {
		r.reporter.PostInstallStarted()
		for _, raw := range t.PostInstall {
			command := template.Substitute(raw, vars)
			r.reporter.PostInstallCommand(command)

			out, err := r.shell.Run(ctx, dir, command)
			if err != nil {
				r.logger.Warn().Err(err).Str("command", command).Msg("post-install command failed")
				res.PostInstallFailures = append(res.PostInstallFailures, command)
				r.reporter.PostInstallFailed(command, err)
				continue
			}
			if s := strings.TrimSpace(out.Stdout); s != "" {
				r.reporter.StepDetail(s)
			}
		}
	}

	if len(t.Documentation.NextSteps) > 0 {
		r.reporter.NextSteps(t.Documentation.NextSteps)
	}
	r.transition(res, StateDone)
	r.reporter.Done(t)
	return nil
}

func (r *Runner) transition(res *Result, s State) {
	res.State = s
	r.reporter.Transition(s)
}

func stepError(index int, step template.Step, err error) error {
	se := &template.StepError{
		Index:       index,
		Kind:        step.Kind(),
		Description: step.Summary(),
		Err:         err,
	}

	var ce *shell.CommandError
	if errors.As(err, &ce) {
		se.Output = ce.Output()
	}
	return se
}
