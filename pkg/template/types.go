package template

// Template is a declarative project template loaded from a document on disk.
// ID is the filename stem used for lookup; Name is the display name from the
// document body. The two may differ.
type Template struct {
	ID            string
	Name          string
	Description   string
	Category      string
	Variables     []VariableSpec
	Prerequisites []string
	Steps         []Step
	PostInstall   []string
	Documentation Documentation
}

// VariableSpec describes one value collected before a template runs.
type VariableSpec struct {
	Name       string   `json:"name" yaml:"name"`
	Prompt     string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Default    string   `json:"default,omitempty" yaml:"default,omitempty"`
	Options    []string `json:"options,omitempty" yaml:"options,omitempty"`
	Validation string   `json:"validation,omitempty" yaml:"validation,omitempty"`
}

type Documentation struct {
	NextSteps []string `json:"nextSteps,omitempty" yaml:"nextSteps,omitempty"`
}

// DisplayCategory returns the category, or "Uncategorized" when unset.
func (t *Template) DisplayCategory() string {
	if t.Category == "" {
		return "Uncategorized"
	}
	return t.Category
}

// PromptText returns the label shown when asking for the variable.
func (v VariableSpec) PromptText() string {
	if v.Prompt == "" {
		return "Value for " + v.Name
	}
	return v.Prompt
}
