package variables

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"mcf/pkg/template"
)

// FormSource asks for values with interactive terminal forms. Variables
// with options are shown as a select list. Accessible switches huh to its
// screen-reader friendly line mode.
type FormSource struct {
	Accessible bool
}

func (s *FormSource) Ask(ctx context.Context, q Question) (string, error) {
	value := q.Spec.Default
	validate := fieldValidator(q.Spec)

	var field huh.Field
	if len(q.Spec.Options) > 0 {
		field = huh.NewSelect[string]().
			Title(q.Prompt).
			Description(q.Retry).
			Options(huh.NewOptions(q.Spec.Options...)...).
			Validate(validate).
			Value(&value)
	} else {
		value = ""
		field = huh.NewInput().
			Title(q.Prompt).
			Description(q.Retry).
			Placeholder(q.Spec.Default).
			Validate(validate).
			Value(&value)
	}

	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(s.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return value, nil
}

// fieldValidator rejects values inside the form with the same reasons the
// Collector would give.
func fieldValidator(spec template.VariableSpec) func(string) error {
	return func(raw string) error {
		_, err := Validate(spec, raw)
		var verr *ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.Reason)
		}
		return err
	}
}
