package variables

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNoInput is returned by a PresetSource without a fallback when a value
// is missing or was rejected.
var ErrNoInput = errors.New("no value supplied and prompting is disabled")

// LineSource reads one line per value from a reader, writing prompts to
// out.
type LineSource struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineSource(in io.Reader, out io.Writer) *LineSource {
	return &LineSource{in: bufio.NewReader(in), out: out}
}

func (s *LineSource) Ask(ctx context.Context, q Question) (string, error) {
	if q.Retry != "" {
		fmt.Fprintf(s.out, "❌ %s\n", q.Retry)
	}
	fmt.Fprintf(s.out, "%s: ", q.Prompt)

	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// PresetSource answers from a fixed set of values, such as --var flags,
// and defers to Fallback for anything else. A preset that fails
// validation is not offered again.
type PresetSource struct {
	Values   map[string]string
	Fallback Source

	used map[string]bool
}

func NewPresetSource(values map[string]string, fallback Source) *PresetSource {
	return &PresetSource{Values: values, Fallback: fallback, used: make(map[string]bool)}
}

func (s *PresetSource) Ask(ctx context.Context, q Question) (string, error) {
	if v, ok := s.Values[q.Spec.Name]; ok && !s.used[q.Spec.Name] {
		s.used[q.Spec.Name] = true
		return v, nil
	}

	if s.Fallback == nil {
		if q.Retry != "" {
			return "", fmt.Errorf("%w: %s", ErrNoInput, q.Retry)
		}
		// With no preset the default still applies.
		if q.Spec.Default != "" {
			return "", nil
		}
		return "", ErrNoInput
	}
	return s.Fallback.Ask(ctx, q)
}
