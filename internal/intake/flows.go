package intake

import (
	"fmt"
	"strings"
	"time"
)

// FlowKind names one of the wizard flows.
type FlowKind string

const (
	FlowIntake           FlowKind = "intake"
	FlowVitals           FlowKind = "vitals"
	FlowConsultation     FlowKind = "consultation"
	FlowConsultationEdit FlowKind = "consultation-edit"
	FlowUser             FlowKind = "user"
)

// AllFlows returns every flow kind.
func AllFlows() []FlowKind {
	return []FlowKind{FlowIntake, FlowVitals, FlowConsultation, FlowConsultationEdit, FlowUser}
}

// ParseFlow parses a flow name.
func ParseFlow(s string) (FlowKind, error) {
	k := FlowKind(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range AllFlows() {
		if f == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrUnknownFlow, s, AllFlows())
}

// FieldKind tells the presentation layer how to render a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindSelect
	KindDate
	KindSecret
	KindLongText
)

// Field is one text input of a step.
type Field struct {
	Name    string
	Label   string
	Help    string
	Kind    FieldKind
	Options []string
	Rule    Rule
}

// Step is one screen of a flow.
type Step struct {
	Title      string
	Fields     []Field
	Checklists []ChecklistGroup
}

// ErrorField maps a token found in an API error to a field error.
type ErrorField struct {
	Token   string
	Field   string
	Message string
}

// BuildEnv carries the values a payload derives from outside the form.
type BuildEnv struct {
	Now   time.Time
	Token string
}

// Flow is the static description of one multi-step form.
type Flow struct {
	Kind        FlowKind
	Registry    Registry
	Title       string
	Steps       []Step
	Endpoint    string
	ErrorFields []ErrorField
	Success     string

	build func(s *WizardState, env BuildEnv) any
}

// LastStep returns the number of the final step.
func (f *Flow) LastStep() int {
	return len(f.Steps)
}

// StepAt returns step n, 1-based.
func (f *Flow) StepAt(n int) Step {
	return f.Steps[n-1]
}

// Payload assembles the request body from s.
func (f *Flow) Payload(s *WizardState, env BuildEnv) any {
	return f.build(s, env)
}

// Validate runs the rules of step n against s and returns the invalid
// fields. The result is empty, never nil, when the step is valid.
func (f *Flow) Validate(n int, s *WizardState, rc RuleContext) map[string]string {
	rc.State = s
	errs := make(map[string]string)
	if n < 1 || n > len(f.Steps) {
		return errs
	}
	for _, field := range f.Steps[n-1].Fields {
		if field.Rule == nil {
			continue
		}
		if msg := field.Rule(s.Value(field.Name), rc); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}

// NewFlow returns the flow of the given kind for a registry. The user flow
// ignores the registry.
func NewFlow(kind FlowKind, reg Registry) (*Flow, error) {
	if kind != FlowUser {
		if _, err := ParseRegistry(string(reg)); err != nil {
			return nil, err
		}
	}
	switch kind {
	case FlowIntake:
		return intakeFlow(reg), nil
	case FlowVitals:
		return vitalsFlow(reg), nil
	case FlowConsultation:
		return consultationFlow(reg, false), nil
	case FlowConsultationEdit:
		return consultationFlow(reg, true), nil
	case FlowUser:
		return userFlow(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, kind)
	}
}

var (
	phoneExists  = ErrorField{Token: "phone", Field: FieldPhone, Message: "Phone number already exists"}
	phoneUnknown = ErrorField{Token: "phone", Field: FieldPhone, Message: "No patient is registered with this phone number"}
)

func locationFields() []Field {
	return []Field{
		{Name: FieldProvince, Label: "Province", Rule: Required("Province")},
		{Name: FieldDistrict, Label: "District", Rule: Required("District")},
		{Name: FieldSector, Label: "Sector", Rule: Required("Sector")},
		{Name: FieldCell, Label: "Cell", Rule: Required("Cell")},
		{Name: FieldVillage, Label: "Village"},
	}
}

func labFields(reg Registry) []Field {
	glucose := Measure{Label: "Random glucose", Unit: "mg/dL", Decimals: 2}
	switch reg {
	case Asthma:
		return []Field{
			{Name: FieldPeakFlow, Label: "Peak flow (L/min)", Rule: Measure{Label: "Peak flow", Unit: "L/min", Decimals: 2}.Optional()},
		}
	case Hypertension:
		return []Field{
			{Name: FieldRandomGlucose, Label: "Random glucose (mg/dL)", Rule: glucose.Optional()},
		}
	default:
		return []Field{
			{Name: FieldRandomGlucose, Label: "Random glucose (mg/dL)", Rule: glucose.Optional()},
			{Name: FieldFastingGlucose, Label: "Fasting glucose (mg/dL)", Rule: Measure{Label: "Fasting glucose", Unit: "mg/dL", Decimals: 2}.Optional()},
			{Name: FieldHbA1c, Label: "HbA1c (%)", Rule: Measure{Label: "HbA1c", Unit: "%", Decimals: 2}.Optional()},
		}
	}
}

func intakeFlow(reg Registry) *Flow {
	step1 := []Field{
		{Name: FieldFirstName, Label: "First name", Rule: Name("First name")},
		{Name: FieldLastName, Label: "Last name", Rule: Name("Last name")},
		{Name: FieldBirthDate, Label: "Date of birth", Help: "YYYY-MM-DD", Kind: KindDate, Rule: BirthDate()},
		{Name: FieldGender, Label: "Gender", Kind: KindSelect, Options: Genders, Rule: OneOf("Gender", Genders...)},
		{Name: FieldHeight, Label: "Height (m)", Rule: Measure{Label: "Height", Unit: "m", Decimals: 2, Min: 0.54, Max: 2.8}.Rule()},
		{Name: FieldWeight, Label: "Weight (kg)", Rule: Measure{Label: "Weight", Unit: "kg", Decimals: 2, Exclusive: true}.Rule()},
		{Name: FieldNationalID, Label: "National ID", Rule: Digits("National ID")},
		{Name: FieldPhone, Label: "Phone number", Rule: PhoneMinLength()},
	}
	step1 = append(step1, locationFields()...)

	step2 := []Field{
		{Name: FieldTemperature, Label: "Temperature (°C)", Rule: OptionalNumber("Temperature")},
	}
	step2 = append(step2, labFields(reg)...)

	return &Flow{
		Kind:     FlowIntake,
		Registry: reg,
		Title:    "New " + reg.Title() + " patient",
		Steps: []Step{
			{Title: "Demographics", Fields: step1},
			{Title: "Clinical baseline", Fields: step2, Checklists: []ChecklistGroup{
				Symptoms(reg), DangerSigns(reg), Complications(reg), Comorbidities(reg),
			}},
			{Title: "Past history", Checklists: PastHistoryGroups()},
		},
		Endpoint: "/registerPatient",
		ErrorFields: []ErrorField{
			phoneExists,
			{Token: "id", Field: FieldNationalID, Message: "National ID already exists"},
		},
		Success: "Patient registered successfully",
		build: func(s *WizardState, env BuildEnv) any {
			return NewPatientRegistration(reg, s, env.Now)
		},
	}
}

func vitalsFlow(reg Registry) *Flow {
	return &Flow{
		Kind:     FlowVitals,
		Registry: reg,
		Title:    reg.Title() + " vitals",
		Steps: []Step{
			{Title: "Patient and body measures", Fields: []Field{
				{Name: FieldPhone, Label: "Patient phone number", Rule: PhoneDigits()},
				{Name: FieldHeight, Label: "Height (cm)", Rule: Measure{Label: "Height", Unit: "cm", Decimals: 2, Min: 54, Max: 280}.Rule()},
				{Name: FieldWeight, Label: "Weight (kg)", Rule: Measure{Label: "Weight", Unit: "kg", Decimals: 2, Max: 999, Exclusive: true}.Rule()},
				{Name: FieldTemperature, Label: "Temperature (°C)", Rule: Measure{Label: "Temperature", Unit: "°C", Decimals: 1, Min: 35, Max: 42}.Rule()},
			}},
			{Title: "Cardio-respiratory", Fields: []Field{
				{Name: FieldBloodPressure, Label: "Blood pressure (mmHg)", Help: "systolic/diastolic, e.g. 120/80", Rule: BloodPressure()},
				{Name: FieldHeartRate, Label: "Heart rate (bpm)", Rule: Number("Heart rate", "bpm", 40, 200)},
				{Name: FieldRespiratory, Label: "Respiratory rate (breaths/min)", Rule: Number("Respiratory rate", "breaths/min", 10, 40)},
				{Name: FieldOxygen, Label: "Oxygen saturation (%)", Rule: Number("Oxygen saturation", "%", 70, 100)},
			}},
		},
		Endpoint:    reg.Endpoint("register", "Vitals"),
		ErrorFields: []ErrorField{phoneUnknown},
		Success:     "Vitals recorded successfully",
		build: func(s *WizardState, env BuildEnv) any {
			return NewVitalsRecord(s, env.Now, env.Token)
		},
	}
}

func consultationFlow(reg Registry, edit bool) *Flow {
	first := []Field{
		{Name: FieldPhone, Label: "Patient phone number", Rule: PhoneDigits()},
	}
	kind, action, title, success := FlowConsultation, "register", "New", "Consultation recorded successfully"
	if edit {
		kind, action, title, success = FlowConsultationEdit, "edit", "Edit", "Consultation updated successfully"
		first = append(first,
			Field{Name: FieldConsultationID, Label: "Consultation ID", Rule: Required("Consultation ID")},
			Field{Name: FieldConsultDate, Label: "Consultation date", Help: "YYYY-MM-DD, empty for today", Kind: KindDate, Rule: OptionalDate("Consultation date")},
		)
	}
	return &Flow{
		Kind:     kind,
		Registry: reg,
		Title:    title + " " + strings.ToLower(reg.Title()) + " consultation",
		Steps: []Step{
			{Title: "Symptoms", Fields: first, Checklists: []ChecklistGroup{Symptoms(reg), DangerSigns(reg)}},
			{Title: "Assessment", Fields: []Field{
				{Name: FieldPhysicalPain, Label: "Physical pain (0-10)", Rule: PainScore("Physical pain")},
				{Name: FieldPsychoPain, Label: "Psychological pain (0-10)", Rule: PainScore("Psychological pain")},
				{Name: FieldSpiritualPain, Label: "Spiritual pain (0-10)", Rule: PainScore("Spiritual pain")},
				{Name: FieldComment, Label: "Comment", Kind: KindLongText},
			}, Checklists: []ChecklistGroup{Complications(reg), Comorbidities(reg)}},
		},
		Endpoint:    reg.Endpoint(action, "Consultation"),
		ErrorFields: []ErrorField{phoneUnknown},
		Success:     success,
		build: func(s *WizardState, env BuildEnv) any {
			return NewConsultationPayload(reg, s, env.Now, env.Token)
		},
	}
}

// Roles lists every role of the user registration form.
var Roles = []string{RoleAdmin, RoleDoctor, RoleNurse, RoleCHW, RoleDataClerk}

func userFlow() *Flow {
	return &Flow{
		Kind:  FlowUser,
		Title: "Register user",
		Steps: []Step{
			{Title: "Account", Fields: []Field{
				{Name: FieldFirstName, Label: "First name", Rule: Name("First name")},
				{Name: FieldLastName, Label: "Last name", Rule: Name("Last name")},
				{Name: FieldEmail, Label: "Email", Rule: Email()},
				{Name: FieldPhone, Label: "Phone number", Rule: PhoneDigits()},
				{Name: FieldPassword, Label: "Password", Kind: KindSecret, Rule: Password()},
				{Name: FieldConfirm, Label: "Confirm password", Kind: KindSecret, Rule: ConfirmPassword()},
			}},
			{Title: "Role", Fields: []Field{
				{Name: FieldRole, Label: "Role", Kind: KindSelect, Options: Roles, Rule: OneOf("Role", Roles...)},
				{Name: FieldSpeciality, Label: "Speciality", Rule: RequiredForRoles("Speciality", ClinicalRoles)},
				{Name: FieldHospital, Label: "Hospital", Rule: RequiredForRoles("Hospital", ClinicalRoles)},
				{Name: FieldSecretKey, Label: "Admin secret key", Help: "only for the Admin role", Kind: KindSecret, Rule: SecretKey()},
			}},
		},
		Endpoint: "/register",
		ErrorFields: []ErrorField{
			phoneExists,
			{Token: "email", Field: FieldEmail, Message: "Email already exists"},
		},
		Success: "User registered successfully",
		build: func(s *WizardState, _ BuildEnv) any {
			return NewUserRegistration(s)
		},
	}
}
