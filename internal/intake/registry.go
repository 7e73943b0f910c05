package intake

import (
	"fmt"
	"strings"
)

// Registry identifies one of the chronic-disease registries.
type Registry string

const (
	Diabetes     Registry = "diabetes"
	Hypertension Registry = "hypertension"
	Asthma       Registry = "asthma"
)

// AllRegistries returns every supported registry in display order.
func AllRegistries() []Registry {
	return []Registry{Diabetes, Hypertension, Asthma}
}

// ParseRegistry parses a registry name, case-insensitively.
func ParseRegistry(s string) (Registry, error) {
	switch Registry(strings.ToLower(strings.TrimSpace(s))) {
	case Diabetes:
		return Diabetes, nil
	case Hypertension:
		return Hypertension, nil
	case Asthma:
		return Asthma, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: %v)", ErrUnknownRegistry, s, AllRegistries())
	}
}

// Code is the short name used in endpoint paths (registerDiabVitals, ...).
func (r Registry) Code() string {
	switch r {
	case Hypertension:
		return "Hyper"
	case Asthma:
		return "Asthma"
	default:
		return "Diab"
	}
}

// Title returns a human readable registry name.
func (r Registry) Title() string {
	switch r {
	case Hypertension:
		return "Hypertension"
	case Asthma:
		return "Asthma"
	default:
		return "Diabetes"
	}
}

// Endpoint builds a per-registry endpoint path such as /editHyperConsultation.
func (r Registry) Endpoint(action, resource string) string {
	return "/" + action + r.Code() + resource
}
