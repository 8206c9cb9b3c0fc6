// Package variables collects and validates the values a template needs
// before it runs.
package variables

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"mcf/pkg/template"
)

// Question is passed to a Source for each value requested. Retry is empty
// on the first attempt and holds the rejection reason afterwards.
type Question struct {
	Spec   template.VariableSpec
	Prompt string
	Retry  string
}

// Source supplies raw values. Ask blocks until a value is available.
type Source interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// SourceError reports a Source that could not supply a value.
type SourceError struct {
	Variable string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read value for %s: %v", e.Variable, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ValidationError is a rejected value. Collect handles it by asking again.
type ValidationError struct {
	Variable string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Variable, e.Reason)
}

type Collector struct {
	source Source
	logger zerolog.Logger
}

func NewCollector(source Source, logger zerolog.Logger) *Collector {
	return &Collector{source: source, logger: logger}
}

// Collect asks for every variable of t in declaration order and returns
// the complete mapping. A value is asked for again until it validates;
// only a Source failure or cancellation ends collection early.
func (c *Collector) Collect(ctx context.Context, t *template.Template) (map[string]string, error) {
	values := make(map[string]string, len(t.Variables))

	for _, spec := range t.Variables {
		pattern, err := compilePattern(spec.Validation)
		if err != nil {
			return nil, fmt.Errorf("variable %s: invalid validation pattern %q: %w", spec.Name, spec.Validation, err)
		}

		q := Question{Spec: spec, Prompt: PromptFor(spec)}
		for {
			if err := ctx.Err(); err != nil {
				return nil, &SourceError{Variable: spec.Name, Err: err}
			}

			raw, err := c.source.Ask(ctx, q)
			if err != nil {
				return nil, &SourceError{Variable: spec.Name, Err: err}
			}

			value, verr := resolve(spec, pattern, raw)
			if verr != nil {
				c.logger.Debug().Str("variable", spec.Name).Str("reason", verr.Reason).Msg("value rejected")
				q.Retry = verr.Reason
				continue
			}

			values[spec.Name] = value
			break
		}
	}

	return values, nil
}

// PromptFor builds the prompt text, listing the options and the default
// when the variable declares them.
func PromptFor(spec template.VariableSpec) string {
	prompt := spec.PromptText()
	if len(spec.Options) > 0 {
		prompt += fmt.Sprintf(" (%s)", strings.Join(spec.Options, "/"))
	}
	if spec.Default != "" {
		prompt += fmt.Sprintf(" [default: %s]", spec.Default)
	}
	return prompt
}

// Validate reports whether raw resolves to an acceptable value for spec
// and returns that value.
func Validate(spec template.VariableSpec, raw string) (string, error) {
	pattern, err := compilePattern(spec.Validation)
	if err != nil {
		return "", err
	}
	value, verr := resolve(spec, pattern, raw)
	if verr != nil {
		return "", verr
	}
	return value, nil
}

func resolve(spec template.VariableSpec, pattern *regexp.Regexp, raw string) (string, *ValidationError) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = spec.Default
	}

	if value == "" {
		return "", &ValidationError{Variable: spec.Name, Reason: "This field is required"}
	}
	if len(spec.Options) > 0 && !contains(spec.Options, value) {
		return "", &ValidationError{Variable: spec.Name, Reason: "Must be one of: " + strings.Join(spec.Options, ", ")}
	}
	if pattern != nil && !pattern.MatchString(value) {
		return "", &ValidationError{Variable: spec.Name, Reason: fmt.Sprintf("Invalid format (expected: %s)", spec.Validation)}
	}
	return value, nil
}

// compilePattern anchors the pattern at both ends so it must match the
// whole value.
func compilePattern(p string) (*regexp.Regexp, error) {
	if p == "" {
		return nil, nil
	}
	return regexp.Compile(`^(?:` + p + `)$`)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
