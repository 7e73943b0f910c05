package wizard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/ncdintake/internal/intake"
)

// ErrEmptyDraft is returned when a draft file names no flow.
var ErrEmptyDraft = errors.New("draft has no flow")

// Draft is the YAML form of an interrupted wizard.
type Draft struct {
	Flow     string            `yaml:"flow"`
	Registry string            `yaml:"registry,omitempty"`
	Step     int               `yaml:"step"`
	Fields   map[string]string `yaml:"fields"`
	Flags    map[string]bool   `yaml:"flags,omitempty"`
}

// LoadDraft reads a draft from path.
func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	d := &Draft{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}
	if d.Flow == "" {
		return nil, ErrEmptyDraft
	}
	return d, nil
}

// SaveDraft writes d to path, creating the parent directory.
func SaveDraft(path string, d *Draft) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating draft directory: %w", err)
		}
	}
	// Drafts carry personal data.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}

// NewFlow resolves the flow the draft belongs to.
func (d *Draft) NewFlow() (*intake.Flow, error) {
	kind, err := intake.ParseFlow(d.Flow)
	if err != nil {
		return nil, err
	}
	var reg intake.Registry
	if kind != intake.FlowUser {
		if reg, err = intake.ParseRegistry(d.Registry); err != nil {
			return nil, err
		}
	}
	return intake.NewFlow(kind, reg)
}
