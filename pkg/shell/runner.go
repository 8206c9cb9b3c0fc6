// Package shell runs template commands and resolves host executables.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command.
const DefaultTimeout = 300 * time.Second

var ErrTimeout = errors.New("command timed out")

// Result is the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command string in a working directory.
type Runner interface {
	Run(ctx context.Context, dir, command string) (*Result, error)
}

// CommandError is returned when a command exits non-zero, times out or
// cannot be started.
type CommandError struct {
	Command string
	Result  *Result
	Err     error
}

func (e *CommandError) Error() string {
	if errors.Is(e.Err, ErrTimeout) {
		return fmt.Sprintf("command timed out: %s", e.Command)
	}
	return fmt.Sprintf("command failed: %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Output returns the diagnostic output of the failed command, preferring
// stderr.
func (e *CommandError) Output() string {
	if e.Result == nil {
		return ""
	}
	if s := strings.TrimSpace(e.Result.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Result.Stdout)
}

// ExecRunner runs commands with "sh -c".
type ExecRunner struct {
	Shell   string
	Timeout time.Duration
}

func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Shell: "sh", Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, dir, command string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Shell, "-c", command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)
	// Children may inherit the output pipes; stop waiting on them shortly
	// after the process is killed.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, &CommandError{Command: command, Result: res, Err: ErrTimeout}
	}
	if err != nil {
		return res, &CommandError{Command: command, Result: res, Err: err}
	}
	return res, nil
}
