package intake

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// RuleContext gives a rule access to the rest of the form.
type RuleContext struct {
	State       *WizardState
	Now         time.Time
	AdminSecret string
}

// Rule validates one trimmed raw value and returns an error message, or ""
// when the value is acceptable.
type Rule func(value string, rc RuleContext) string

const birthDateLayout = "2006-01-02"

var (
	digitRe         = regexp.MustCompile(`\d`)
	digitsOnlyRe    = regexp.MustCompile(`^\d+$`)
	phoneDigitsRe   = regexp.MustCompile(`^\d{10,}$`)
	twoDecimalsRe   = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)
	oneDecimalRe    = regexp.MustCompile(`^-?\d+(\.\d)?$`)
	bloodPressureRe = regexp.MustCompile(`^(\d{2,3})\s*/\s*(\d{2,3})$`)
)

// parseNumber parses a finite float. strconv accepts "NaN" and "Inf",
// which no form field can carry.
func parseNumber(v string) (float64, bool) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Required rejects empty values.
func Required(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return label + " is required"
		}
		return ""
	}
}

// Name is required and may not contain a digit.
func Name(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return label + " is required"
		}
		if digitRe.MatchString(v) {
			return label + " cannot contain numbers"
		}
		return ""
	}
}

// BirthDate is required, not in the future and at most 120 years ago.
func BirthDate() Rule {
	return func(v string, rc RuleContext) string {
		if v == "" {
			return "Date of birth is required"
		}
		dob, err := time.ParseInLocation(birthDateLayout, v, rc.Now.Location())
		if err != nil {
			return "Date of birth must use the YYYY-MM-DD format"
		}
		if dob.After(dateOnly(rc.Now)) {
			return "Date of birth cannot be in the future"
		}
		if Age(dob, rc.Now) > 120 {
			return "Age cannot be more than 120 years"
		}
		return ""
	}
}

// OneOf requires one of a fixed set of values.
func OneOf(label string, values ...string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return label + " is required"
		}
		if !slices.Contains(values, v) {
			return fmt.Sprintf("%s must be one of %v", label, values)
		}
		return ""
	}
}

// Digits is required and must contain digits only.
func Digits(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return label + " is required"
		}
		if !digitsOnlyRe.MatchString(v) {
			return label + " must contain digits only"
		}
		return ""
	}
}

// PhoneMinLength accepts any phone number of at least ten characters.
func PhoneMinLength() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return "Phone number is required"
		}
		if len(v) < 10 {
			return "Phone number must be at least 10 digits"
		}
		return ""
	}
}

// PhoneDigits accepts ten or more digits and nothing else.
func PhoneDigits() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return "Phone number is required"
		}
		if !phoneDigitsRe.MatchString(v) {
			return "Phone number must be at least 10 digits"
		}
		return ""
	}
}

// Measure describes a required numeric field with a precision and a range.
// A zero Max leaves the upper bound open; Exclusive makes Min exclusive.
type Measure struct {
	Label     string
	Unit      string
	Decimals  int
	Min, Max  float64
	Exclusive bool
}

// Rule returns the validation rule of the measure.
func (m Measure) Rule() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return m.Label + " is required"
		}
		return m.check(v)
	}
}

// Optional returns a rule that accepts an empty value and checks the rest.
func (m Measure) Optional() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return ""
		}
		return m.check(v)
	}
}

func (m Measure) check(v string) string {
	re := twoDecimalsRe
	if m.Decimals == 1 {
		re = oneDecimalRe
	}
	if !re.MatchString(v) {
		if m.Decimals == 1 {
			return m.Label + " must be a number with at most 1 decimal place"
		}
		return fmt.Sprintf("%s must be a number with at most %d decimal places", m.Label, m.Decimals)
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return m.Label + " must be a number"
	}
	if m.Exclusive && n <= m.Min {
		return fmt.Sprintf("%s must be greater than %s", m.Label, formatBound(m.Min, m.Unit))
	}
	if !m.Exclusive && n < m.Min || m.Max > 0 && n > m.Max {
		if m.Max == 0 {
			return fmt.Sprintf("%s must be at least %s", m.Label, formatBound(m.Min, m.Unit))
		}
		if m.Exclusive {
			return fmt.Sprintf("%s must not exceed %s", m.Label, formatBound(m.Max, m.Unit))
		}
		return fmt.Sprintf("%s must be between %s and %s", m.Label, formatBound(m.Min, ""), formatBound(m.Max, m.Unit))
	}
	return ""
}

func formatBound(n float64, unit string) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// Number requires any finite number within [min, max].
func Number(label, unit string, min, max float64) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return label + " is required"
		}
		n, ok := parseNumber(v)
		if !ok {
			return label + " must be a number"
		}
		if n < min || n > max {
			return fmt.Sprintf("%s must be between %s and %s", label, formatBound(min, ""), formatBound(max, unit))
		}
		return ""
	}
}

// OptionalNumber accepts an empty value or any number.
func OptionalNumber(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return ""
		}
		if _, ok := parseNumber(v); !ok {
			return label + " must be a number"
		}
		return ""
	}
}

// PainScore accepts an empty value or a number in [0, 10].
func PainScore(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return ""
		}
		n, ok := parseNumber(v)
		if !ok || n < 0 || n > 10 {
			return label + " must be a number between 0 and 10"
		}
		return ""
	}
}

// BloodPressure requires "systolic/diastolic" with systolic in [90,180]
// and diastolic in [60,120].
func BloodPressure() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return "Blood pressure is required"
		}
		m := bloodPressureRe.FindStringSubmatch(v)
		if m == nil {
			return "Blood pressure must use the systolic/diastolic format (e.g. 120/80)"
		}
		sys, _ := strconv.Atoi(m[1])
		dia, _ := strconv.Atoi(m[2])
		if sys < 90 || sys > 180 {
			return "Systolic pressure must be between 90 and 180 mmHg"
		}
		if dia < 60 || dia > 120 {
			return "Diastolic pressure must be between 60 and 120 mmHg"
		}
		return ""
	}
}

// Password is required.
func Password() Rule {
	return Required("Password")
}

// ConfirmPassword is required and must equal the password field.
func ConfirmPassword() Rule {
	return func(v string, rc RuleContext) string {
		if v == "" {
			return "Please confirm the password"
		}
		if v != rc.State.Value(FieldPassword) {
			return "Passwords do not match"
		}
		return ""
	}
}

// SecretKey must match the admin secret when the selected role is Admin.
func SecretKey() Rule {
	return func(v string, rc RuleContext) string {
		if rc.State.Value(FieldRole) != RoleAdmin {
			return ""
		}
		if v == "" {
			return "Secret key is required for administrators"
		}
		if rc.AdminSecret == "" || v != rc.AdminSecret {
			return "Secret key is invalid"
		}
		return ""
	}
}

// RequiredForRoles is required only when the selected role is in roles.
func RequiredForRoles(label string, roles []string) Rule {
	return func(v string, rc RuleContext) string {
		if !slices.Contains(roles, rc.State.Value(FieldRole)) {
			return ""
		}
		if v == "" {
			return label + " is required for " + rc.State.Value(FieldRole)
		}
		return ""
	}
}

// OptionalDate accepts an empty value or a YYYY-MM-DD date.
func OptionalDate(label string) Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return ""
		}
		if _, err := time.Parse(birthDateLayout, v); err != nil {
			return label + " must use the YYYY-MM-DD format"
		}
		return ""
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email is required and must look like an address.
func Email() Rule {
	return func(v string, _ RuleContext) string {
		if v == "" {
			return "Email is required"
		}
		if !emailRe.MatchString(v) {
			return "Email is not a valid address"
		}
		return ""
	}
}
