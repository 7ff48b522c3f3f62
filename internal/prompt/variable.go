package prompt

// VariableDef declares a variable a prompt template reads.
type VariableDef struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Resolve returns the value for v from vars. A missing required variable
// is an error; a missing optional one falls back to Default, or the empty
// string so templates can test it with {{if}}.
func (v VariableDef) Resolve(promptID string, vars map[string]any) (any, error) {
	if value, ok := vars[v.Name]; ok && value != nil {
		return value, nil
	}
	if v.Required {
		return nil, NewMissingVariableError(promptID, v.Name)
	}
	if v.Default != nil {
		return v.Default, nil
	}
	return "", nil
}
