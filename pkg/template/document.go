package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a template.
type document struct {
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string           `json:"category,omitempty" yaml:"category,omitempty"`
	Variables     []VariableSpec   `json:"variables,omitempty" yaml:"variables,omitempty"`
	Prerequisites []string         `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Steps         []map[string]any `json:"steps,omitempty" yaml:"steps,omitempty"`
	PostInstall   []string         `json:"postInstall,omitempty" yaml:"postInstall,omitempty"`
	Documentation *Documentation   `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

var stepDecoders = map[string]func(description string, f stepFields) (Step, error){
	KindCommand: func(description string, f stepFields) (Step, error) {
		command, err := f.required("command")
		if err != nil {
			return nil, err
		}
		return &CommandStep{Description: description, Command: command}, nil
	},
	KindDirectory: func(description string, f stepFields) (Step, error) {
		path, err := f.required("path")
		if err != nil {
			return nil, err
		}
		return &DirectoryStep{Description: description, Path: path}, nil
	},
	KindFile: func(description string, f stepFields) (Step, error) {
		path, err := f.required("path")
		if err != nil {
			return nil, err
		}
		content, err := f.optional("content")
		if err != nil {
			return nil, err
		}
		return &FileStep{Description: description, Path: path, Content: content}, nil
	},
}

// Parse decodes a template document. The format is chosen from the file
// extension of name: .yaml and .yml are YAML, anything else is JSON.
func Parse(name string, data []byte) (*Template, error) {
	var doc document
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return doc.toTemplate()
}

// Encode renders t as an indented JSON document.
func Encode(t *Template) ([]byte, error) {
	doc := document{
		Name:          t.Name,
		Description:   t.Description,
		Category:      t.Category,
		Variables:     t.Variables,
		Prerequisites: t.Prerequisites,
		PostInstall:   t.PostInstall,
	}
	if len(t.Documentation.NextSteps) > 0 {
		doc.Documentation = &Documentation{NextSteps: t.Documentation.NextSteps}
	}
	for _, s := range t.Steps {
		doc.Steps = append(doc.Steps, s.fields())
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (d *document) toTemplate() (*Template, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, errors.New("missing required field \"name\"")
	}

	seen := make(map[string]bool, len(d.Variables))
	for i, v := range d.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable %d: missing name", i+1)
		}
		if strings.ContainsAny(v.Name, "{}") {
			return nil, fmt.Errorf("variable %q: name must not contain braces", v.Name)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("variable %q declared more than once", v.Name)
		}
		seen[v.Name] = true
	}

	t := &Template{
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Variables:     d.Variables,
		Prerequisites: d.Prerequisites,
		PostInstall:   d.PostInstall,
	}
	if d.Documentation != nil {
		t.Documentation = *d.Documentation
	}

	for i, raw := range d.Steps {
		step, err := decodeStep(raw)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		t.Steps = append(t.Steps, step)
	}

	return t, nil
}

func decodeStep(raw map[string]any) (Step, error) {
	f := stepFields(raw)

	kind, err := f.optional("type")
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = KindCommand
	}
	description, err := f.optional("description")
	if err != nil {
		return nil, err
	}

	if decode, ok := stepDecoders[kind]; ok {
		return decode(description, f)
	}

	rest := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "type" && k != "description" {
			rest[k] = v
		}
	}
	return &UnknownStep{Type: kind, Description: description, Fields: rest}, nil
}

type stepFields map[string]any

func (f stepFields) optional(key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s, nil
}

func (f stepFields) required(key string) (string, error) {
	s, err := f.optional(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("missing required field %q", key)
	}
	return s, nil
}
