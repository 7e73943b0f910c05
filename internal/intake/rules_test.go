package intake

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func rc() RuleContext {
	return RuleContext{State: NewWizardState(), Now: fixedNow}
}

func TestName(t *testing.T) {
	rule := Name("First name")
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"Jane", false},
		{"Jean-Luc", false},
		{"", true},
		{"J4ne", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := rule(tt.in, rc())
			if (got != "") != tt.wantErr {
				t.Errorf("Name(%q) = %q, wantErr %v", tt.in, got, tt.wantErr)
			}
		})
	}
}

func TestBirthDate(t *testing.T) {
	rule := BirthDate()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", "1990-05-01", ""},
		{"today", "2025-06-15", ""},
		{"empty", "", "Date of birth is required"},
		{"bad format", "01/05/1990", "Date of birth must use the YYYY-MM-DD format"},
		{"tomorrow", "2025-06-16", "Date of birth cannot be in the future"},
		{"exactly 120", "1905-06-15", ""},
		{"over 120", "1904-06-14", "Age cannot be more than 120 years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule(tt.in, rc()); got != tt.want {
				t.Errorf("BirthDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBirthDateUsesLocalCalendar(t *testing.T) {
	rule := BirthDate()
	zones := []*time.Location{
		time.FixedZone("CAT", 2*60*60),
		time.FixedZone("EST", -5*60*60),
		time.FixedZone("NZST", 12*60*60),
	}
	for _, loc := range zones {
		now := time.Date(2026, time.October, 19, 9, 0, 0, 0, loc)
		ctx := RuleContext{State: NewWizardState(), Now: now}
		if got := rule("2026-10-19", ctx); got != "" {
			t.Errorf("%s: born today got %q, want no error", loc, got)
		}
		if got := rule("2026-10-20", ctx); got != "Date of birth cannot be in the future" {
			t.Errorf("%s: born tomorrow got %q", loc, got)
		}
	}
}

func TestNumberRulesRejectNonFinite(t *testing.T) {
	rules := map[string]Rule{
		"heart rate":        Number("Heart rate", "bpm", 40, 200),
		"respiratory rate":  Number("Respiratory rate", "breaths/min", 10, 40),
		"oxygen saturation": Number("Oxygen saturation", "%", 70, 100),
		"temperature":       OptionalNumber("Temperature"),
	}
	for name, rule := range rules {
		for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity"} {
			if got := rule(in, rc()); got == "" {
				t.Errorf("%s: %q passed, want an error", name, in)
			}
		}
	}
	if got := Number("Heart rate", "bpm", 40, 200)("72", rc()); got != "" {
		t.Errorf("Expected 72 bpm to pass, got %q", got)
	}
}

func TestMeasure(t *testing.T) {
	heightCm := Measure{Label: "Height", Unit: "cm", Decimals: 2, Min: 54, Max: 280}.Rule()
	weight := Measure{Label: "Weight", Unit: "kg", Decimals: 2, Max: 999, Exclusive: true}.Rule()
	temp := Measure{Label: "Temperature", Unit: "°C", Decimals: 1, Min: 35, Max: 42}.Rule()
	glucose := Measure{Label: "Glucose", Decimals: 2}.Optional()

	tests := []struct {
		name    string
		rule    Rule
		in      string
		wantErr bool
	}{
		{"height ok", heightCm, "150", false},
		{"height two decimals", heightCm, "150.25", false},
		{"height three decimals", heightCm, "150.255", true},
		{"height too tall", heightCm, "300", true},
		{"height too short", heightCm, "53.99", true},
		{"height lower bound", heightCm, "54", false},
		{"height empty", heightCm, "", true},
		{"height text", heightCm, "tall", true},
		{"weight zero", weight, "0", true},
		{"weight negative", weight, "-3", true},
		{"weight ok", weight, "65", false},
		{"weight cap", weight, "999", false},
		{"weight over cap", weight, "999.5", true},
		{"temp ok", temp, "36.6", false},
		{"temp two decimals", temp, "36.65", true},
		{"temp low", temp, "34.9", true},
		{"temp high", temp, "42.1", true},
		{"glucose empty", glucose, "", false},
		{"glucose ok", glucose, "5.75", false},
		{"glucose negative", glucose, "-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule(tt.in, rc())
			if (got != "") != tt.wantErr {
				t.Errorf("rule(%q) = %q, wantErr %v", tt.in, got, tt.wantErr)
			}
		})
	}
}

func TestPainScore(t *testing.T) {
	rule := PainScore("Physical pain")
	for _, in := range []string{"0", "10", "", "5.5"} {
		if got := rule(in, rc()); got != "" {
			t.Errorf("PainScore(%q) = %q, want no error", in, got)
		}
	}
	for _, in := range []string{"11", "-1", "ten", "NaN", "nan", "Inf", "-Inf"} {
		if got := rule(in, rc()); got == "" {
			t.Errorf("PainScore(%q) passed, want an error", in)
		}
	}
}

func TestBloodPressure(t *testing.T) {
	rule := BloodPressure()
	tests := []struct {
		in   string
		want string
	}{
		{"120/80", ""},
		{"90/60", ""},
		{"180/120", ""},
		{"", "Blood pressure is required"},
		{"120", "Blood pressure must use the systolic/diastolic format (e.g. 120/80)"},
		{"200/80", "Systolic pressure must be between 90 and 180 mmHg"},
		{"120/50", "Diastolic pressure must be between 60 and 120 mmHg"},
	}
	for _, tt := range tests {
		if got := rule(tt.in, rc()); got != tt.want {
			t.Errorf("BloodPressure(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhoneRules(t *testing.T) {
	tests := []struct {
		in        string
		minLength bool
		digits    bool
	}{
		{"0788123456", true, true},
		{"078812345", false, false},
		{"0788 123 456", true, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := PhoneMinLength()(tt.in, rc()) == ""; got != tt.minLength {
			t.Errorf("PhoneMinLength(%q) valid = %v, want %v", tt.in, got, tt.minLength)
		}
		if got := PhoneDigits()(tt.in, rc()) == ""; got != tt.digits {
			t.Errorf("PhoneDigits(%q) valid = %v, want %v", tt.in, got, tt.digits)
		}
	}
}

func TestRoleDependentRules(t *testing.T) {
	state := NewWizardState()
	ctx := RuleContext{State: state, Now: fixedNow, AdminSecret: "s3cret"}

	state.Set(FieldRole, RoleDataClerk)
	if got := SecretKey()("", ctx); got != "" {
		t.Errorf("SecretKey for non-admin = %q, want no error", got)
	}
	if got := RequiredForRoles("Hospital", ClinicalRoles)("", ctx); got != "" {
		t.Errorf("Hospital for data clerk = %q, want no error", got)
	}

	state.Set(FieldRole, RoleAdmin)
	if got := SecretKey()("wrong", ctx); got != "Secret key is invalid" {
		t.Errorf("SecretKey mismatch = %q", got)
	}
	if got := SecretKey()("s3cret", ctx); got != "" {
		t.Errorf("SecretKey match = %q, want no error", got)
	}

	state.Set(FieldRole, RoleNurse)
	if got := RequiredForRoles("Hospital", ClinicalRoles)("", ctx); got == "" {
		t.Error("Hospital for nurse passed, want an error")
	}
}

func TestSecretKeyWithoutConfiguredSecret(t *testing.T) {
	state := NewWizardState()
	state.Set(FieldRole, RoleAdmin)
	if got := SecretKey()("anything", RuleContext{State: state}); got == "" {
		t.Error("SecretKey passed with no configured secret, want an error")
	}
}

func TestConfirmPassword(t *testing.T) {
	state := NewWizardState()
	state.Set(FieldPassword, "hunter22")
	ctx := RuleContext{State: state}
	if got := ConfirmPassword()("hunter22", ctx); got != "" {
		t.Errorf("matching confirm = %q", got)
	}
	if got := ConfirmPassword()("hunter23", ctx); got != "Passwords do not match" {
		t.Errorf("mismatching confirm = %q", got)
	}
}
