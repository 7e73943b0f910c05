// Package wizard provides the interactive terminal forms of the intake
// flows.
package wizard

// Phase represents the current screen of the wizard
type Phase int

const (
	PhaseStep Phase = iota
	PhaseSummary
	PhaseSaveDraft
	PhaseSubmitting
	PhaseComplete
	PhaseError
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseStep:
		return "step"
	case PhaseSummary:
		return "summary"
	case PhaseSaveDraft:
		return "save-draft"
	case PhaseSubmitting:
		return "submitting"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}
