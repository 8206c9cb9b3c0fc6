// Package ui renders run progress for the terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"mcf/internal/runner"
	"mcf/pkg/template"
)

// Printer writes human-readable progress for a template run.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Transition(runner.State) {}

func (p *Printer) Configuring(t *template.Template) {
	fmt.Fprintf(p.out, "\n🔧 Configuring template: %s\n", Title(t.Name))
	if t.Description != "" {
		fmt.Fprintf(p.out, "📝 %s\n", t.Description)
	}
	fmt.Fprintln(p.out)
}

func (p *Printer) Initializing(t *template.Template) {
	fmt.Fprintf(p.out, "\n🚀 Initializing project from template: %s\n", Title(t.Name))
}

func (p *Printer) CheckingPrerequisites() {
	fmt.Fprintln(p.out, "🔍 Checking prerequisites...")
}

func (p *Printer) PrerequisitesSatisfied() {
	fmt.Fprintln(p.out, Success("✅ All prerequisites satisfied"))
}

func (p *Printer) StepStarted(index int, step template.Step) {
	if index == 1 {
		fmt.Fprintln(p.out, "\n📋 Executing template steps:")
	}
	fmt.Fprintf(p.out, "\n%d. %s\n", index, step.Summary())
}

func (p *Printer) StepDetail(msg string) {
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(p.out, "   %s\n", line)
	}
}

func (p *Printer) StepWarning(msg string) {
	fmt.Fprintf(p.out, "   %s\n", Warning(msg))
}

func (p *Printer) PostInstallStarted() {
	fmt.Fprintln(p.out, "\n🎯 Running post-installation steps:")
}

func (p *Printer) PostInstallCommand(command string) {
	fmt.Fprintf(p.out, "  ▶️ %s\n", command)
}

func (p *Printer) PostInstallFailed(command string, err error) {
	fmt.Fprintf(p.out, "   %s\n", Warning(fmt.Sprintf("⚠️ %v (continuing)", err)))
}

func (p *Printer) NextSteps(steps []string) {
	fmt.Fprintln(p.out, "\n📚 Suggested next steps:")
	for _, s := range steps {
		fmt.Fprintf(p.out, "  • %s\n", s)
	}
}

func (p *Printer) Done(t *template.Template) {
	fmt.Fprintf(p.out, "\n%s\n", Success(fmt.Sprintf("✅ Template '%s' executed successfully!", t.Name)))
}

// Failure prints the reason a run aborted, including any captured
// command output.
func (p *Printer) Failure(res *runner.Result) {
	if res.Err == nil {
		return
	}
	fmt.Fprintf(p.out, "%s\n", Error("❌ "+res.Err.Error()))

	var se *template.StepError
	if errors.As(res.Err, &se) && se.Output != "" {
		fmt.Fprintf(p.out, "Error: %s\n", se.Output)
	}
	if res.FailedStep > 0 {
		fmt.Fprintf(p.out, "%s\n", Error(fmt.Sprintf("❌ Template execution failed at step %d", res.FailedStep)))
	}
}
