package help

import (
	"testing"
	"time"

	"github.com/mrsinham/ncdintake/internal/intake"
)

func ruleOf(t *testing.T, kind intake.FlowKind, name string) intake.Rule {
	t.Helper()
	flow, err := intake.NewFlow(kind, intake.Diabetes)
	if err != nil {
		t.Fatalf("NewFlow(%s): %v", kind, err)
	}
	for _, step := range flow.Steps {
		for _, f := range step.Fields {
			if f.Name == name {
				return f.Rule
			}
		}
	}
	t.Fatalf("Field %s not found in %s", name, kind)
	return nil
}

// The examples given in the help texts must match what the rules accept.
func TestHelpExamplesMatchRules(t *testing.T) {
	rc := intake.RuleContext{
		State: intake.NewWizardState(),
		Now:   time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name   string
		flow   intake.FlowKind
		field  string
		value  string
		wantOK bool
	}{
		{"single letter name", intake.FlowIntake, intake.FieldFirstName, "A", true},
		{"hyphenated name", intake.FlowIntake, intake.FieldLastName, "Jean-Paul", true},
		{"name with digit", intake.FlowIntake, intake.FieldFirstName, "Jane2", false},
		{"intake phone with spaces", intake.FlowIntake, intake.FieldPhone, "078 812 3456", true},
		{"vitals phone with spaces", intake.FlowVitals, intake.FieldPhone, "078 812 3456", false},
		{"vitals phone digits", intake.FlowVitals, intake.FieldPhone, "0788123456", true},
		{"account phone with spaces", intake.FlowUser, intake.FieldPhone, "078 812 3456", false},
		{"intake temperature empty", intake.FlowIntake, intake.FieldTemperature, "", true},
		{"vitals temperature empty", intake.FlowVitals, intake.FieldTemperature, "", false},
		{"intake height metres", intake.FlowIntake, intake.FieldHeight, "1.65", true},
		{"vitals height centimetres", intake.FlowVitals, intake.FieldHeight, "165", true},
		{"blood pressure example", intake.FlowVitals, intake.FieldBloodPressure, "120/80", true},
		{"pain empty", intake.FlowConsultation, intake.FieldPhysicalPain, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ruleOf(t, tt.flow, tt.field)(tt.value, rc)
			if tt.wantOK && got != "" {
				t.Errorf("Expected %q to pass, got %q", tt.value, got)
			}
			if !tt.wantOK && got == "" {
				t.Errorf("Expected %q to fail", tt.value)
			}
		})
	}
}

func TestEveryFieldHasHelp(t *testing.T) {
	for _, kind := range intake.AllFlows() {
		flow, err := intake.NewFlow(kind, intake.Asthma)
		if err != nil {
			t.Fatalf("NewFlow(%s): %v", kind, err)
		}
		for _, step := range flow.Steps {
			for _, f := range step.Fields {
				if f.Rule == nil {
					continue
				}
				if _, ok := Texts[f.Name]; !ok {
					t.Errorf("%s: no help for validated field %s", kind, f.Name)
				}
			}
		}
	}
}

func TestFor(t *testing.T) {
	text, ok := For(intake.FlowVitals, intake.FieldHeight)
	if !ok || text.Details != "Centimetres, 54 to 280 (e.g. 165). At most two decimals." {
		t.Errorf("Expected the vitals height rule, got %+v", text)
	}
	if Texts[intake.FieldHeight].Details != "Metres, 0.54 to 2.8 (e.g. 1.65). At most two decimals." {
		t.Error("For must not modify Texts")
	}
	if text, _ := For(intake.FlowConsultation, intake.FieldPhone); text.Details != "10 or more digits only (e.g. 0788123456)." {
		t.Errorf("Expected the default phone rule, got %q", text.Details)
	}
	if _, ok := For(intake.FlowIntake, "nope"); ok {
		t.Error("Expected no help for an unknown key")
	}
}
