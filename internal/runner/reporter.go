package runner

import "mcf/pkg/template"

// Reporter receives progress events from a run.
type Reporter interface {
	template.StepReporter

	Transition(s State)
	Configuring(t *template.Template)
	Initializing(t *template.Template)
	CheckingPrerequisites()
	PrerequisitesSatisfied()
	StepStarted(index int, step template.Step)
	PostInstallStarted()
	PostInstallCommand(command string)
	PostInstallFailed(command string, err error)
	NextSteps(steps []string)
	Done(t *template.Template)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) StepDetail(string)               {}
func (NopReporter) StepWarning(string)              {}
func (NopReporter) Transition(State)                {}
func (NopReporter) Configuring(*template.Template)  {}
func (NopReporter) Initializing(*template.Template) {}
func (NopReporter) CheckingPrerequisites()          {}
func (NopReporter) PrerequisitesSatisfied()         {}
func (NopReporter) StepStarted(int, template.Step)  {}
func (NopReporter) PostInstallStarted()             {}
func (NopReporter) PostInstallCommand(string)       {}
func (NopReporter) PostInstallFailed(string, error) {}
func (NopReporter) NextSteps([]string)              {}
func (NopReporter) Done(*template.Template)         {}
