// Package intake implements the multi-step intake forms of the registries:
// wizard state, field validation, derived values, checklist assembly and
// payload submission.
package intake

import "strings"

// WizardState holds the raw input of one flow.
//
// Errors only ever contains the fields of the step validated last; it is
// replaced wholesale on every validation pass.
type WizardState struct {
	Step   int
	Fields map[string]string
	Flags  map[string]bool
	Errors map[string]string
}

// NewWizardState returns an empty state positioned on the first step.
func NewWizardState() *WizardState {
	return &WizardState{
		Step:   1,
		Fields: make(map[string]string),
		Flags:  make(map[string]bool),
		Errors: make(map[string]string),
	}
}

// Value returns the trimmed text input of a field.
func (s *WizardState) Value(name string) string {
	return strings.TrimSpace(s.Fields[name])
}

// Checked reports whether a checkbox is set.
func (s *WizardState) Checked(name string) bool {
	return s.Flags[name]
}

// Set stores a text input.
func (s *WizardState) Set(name, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	s.Fields[name] = value
}

// SetFlag stores a checkbox input.
func (s *WizardState) SetFlag(name string, checked bool) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	s.Flags[name] = checked
}

// Clone returns a deep copy of the state.
func (s *WizardState) Clone() *WizardState {
	c := &WizardState{
		Step:   s.Step,
		Fields: make(map[string]string, len(s.Fields)),
		Flags:  make(map[string]bool, len(s.Flags)),
		Errors: make(map[string]string, len(s.Errors)),
	}
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	for k, v := range s.Flags {
		c.Flags[k] = v
	}
	for k, v := range s.Errors {
		c.Errors[k] = v
	}
	return c
}
