package wizard

import (
	"github.com/mrsinham/ncdintake/internal/intake"
)

// ToDraft captures the state of flow as a draft. Secret fields are left
// out so passwords never reach the disk.
func ToDraft(flow *intake.Flow, s *intake.WizardState) *Draft {
	secret := make(map[string]bool)
	for _, st := range flow.Steps {
		for _, f := range st.Fields {
			if f.Kind == intake.KindSecret {
				secret[f.Name] = true
			}
		}
	}

	d := &Draft{
		Flow:   string(flow.Kind),
		Step:   s.Step,
		Fields: make(map[string]string, len(s.Fields)),
		Flags:  make(map[string]bool),
	}
	if flow.Kind != intake.FlowUser {
		d.Registry = string(flow.Registry)
	}
	for k, v := range s.Fields {
		if secret[k] || v == "" {
			continue
		}
		d.Fields[k] = v
	}
	for k, v := range s.Flags {
		if v {
			d.Flags[k] = true
		}
	}
	return d
}

// State rebuilds a wizard state from the draft. Errors start empty.
func (d *Draft) State() *intake.WizardState {
	s := intake.NewWizardState()
	if d.Step > 0 {
		s.Step = d.Step
	}
	for k, v := range d.Fields {
		s.Set(k, v)
	}
	for k, v := range d.Flags {
		s.SetFlag(k, v)
	}
	return s
}
