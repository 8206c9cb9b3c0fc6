package template

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("template not found")
	ErrMalformedDocument   = errors.New("malformed template document")
	ErrStepFailed          = errors.New("template step failed")
	ErrPrerequisiteMissing = errors.New("missing prerequisite")
)

// NotFoundError reports a template identifier with no backing document.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template '%s' not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DocumentError reports a template file that could not be parsed.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("invalid template file %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() []error { return []error{ErrMalformedDocument, e.Err} }

// StepError reports the first failing step of a run. Index is 1-based.
type StepError struct {
	Index       int
	Kind        string
	Description string
	Output      string
	Err         error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %d (%s) failed", e.Index, e.Kind)
	if e.Description != "" {
		msg = fmt.Sprintf("step %d (%s: %s) failed", e.Index, e.Kind, e.Description)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStepFailed}
	}
	return []error{ErrStepFailed, e.Err}
}

// PrerequisiteError reports an external tool that is not on the search path.
type PrerequisiteError struct {
	Name string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("missing prerequisite: %s", e.Name)
}

func (e *PrerequisiteError) Unwrap() error { return ErrPrerequisiteMissing }
