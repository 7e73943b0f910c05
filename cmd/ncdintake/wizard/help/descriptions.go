// Package help holds the contextual help shown next to wizard fields.
package help

import "github.com/mrsinham/ncdintake/internal/intake"

// ChecklistKey is the help entry of checklist fields.
const ChecklistKey = "checklist"

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
	// Variants replaces Details for flows whose rule differs.
	Variants map[intake.FlowKind]string
}

// For returns the help of key as it applies to flow.
func For(flow intake.FlowKind, key string) (HelpText, bool) {
	text, ok := Texts[key]
	if !ok {
		return HelpText{}, false
	}
	if d, ok := text.Variants[flow]; ok {
		text.Details = d
	}
	return text, true
}

// Texts contains help information for the wizard fields, keyed by field
// name. ChecklistKey is shared by every checklist. Use For to apply the
// per-flow variants.
var Texts = map[string]HelpText{
	intake.FieldFirstName: {
		Title:       "FIRST NAME",
		Description: "Given name as written on the national ID.",
		Details:     "Required. Any characters except digits.",
	},
	intake.FieldLastName: {
		Title:       "LAST NAME",
		Description: "Family name as written on the national ID.",
		Details:     "Required. Any characters except digits.",
	},
	intake.FieldBirthDate: {
		Title:       "DATE OF BIRTH",
		Description: "Used to derive the age sent with the record.",
		Details:     "Format: YYYY-MM-DD. Today is accepted, later dates are not. At most 120 years ago.",
	},
	intake.FieldGender: {
		Title:       "GENDER",
		Description: "Patient's gender.",
		Details:     "male, female or other",
	},
	intake.FieldHeight: {
		Title:       "HEIGHT",
		Description: "Body height, used with the weight to derive the BMI.",
		Details:     "Metres, 0.54 to 2.8 (e.g. 1.65). At most two decimals.",
		Variants: map[intake.FlowKind]string{
			intake.FlowVitals: "Centimetres, 54 to 280 (e.g. 165). At most two decimals.",
		},
	},
	intake.FieldWeight: {
		Title:       "WEIGHT",
		Description: "Body weight in kilograms.",
		Details:     "Must be greater than 0. At most two decimals.",
		Variants: map[intake.FlowKind]string{
			intake.FlowVitals: "Greater than 0 and at most 999. At most two decimals.",
		},
	},
	intake.FieldNationalID: {
		Title:       "NATIONAL ID",
		Description: "National identification number.",
		Details:     "Digits only. The registry rejects an ID that is already registered.",
	},
	intake.FieldPhone: {
		Title:       "PHONE NUMBER",
		Description: "Identifies the patient across vitals and consultations.",
		Details:     "10 or more digits only (e.g. 0788123456).",
		Variants: map[intake.FlowKind]string{
			intake.FlowIntake: "At least 10 characters, separators allowed (e.g. 078 812 3456).",
		},
	},
	intake.FieldProvince: {
		Title:       "LOCATION",
		Description: "Administrative location of the patient's residence.",
		Details:     "Province, district, sector and cell are required. Village is optional.",
	},
	intake.FieldTemperature: {
		Title:       "TEMPERATURE",
		Description: "Body temperature in degrees Celsius.",
		Details:     "Optional. Any number.",
		Variants: map[intake.FlowKind]string{
			intake.FlowVitals: "Required, 35.0 to 42.0 with one decimal.",
		},
	},
	intake.FieldBloodPressure: {
		Title:       "BLOOD PRESSURE",
		Description: "Systolic over diastolic pressure in mmHg.",
		Details:     "Format: 120/80. Systolic 90 to 180, diastolic 60 to 120.",
	},
	intake.FieldHeartRate: {
		Title:       "HEART RATE",
		Description: "Beats per minute.",
		Details:     "Required, 40 to 200.",
	},
	intake.FieldRespiratory: {
		Title:       "RESPIRATORY RATE",
		Description: "Breaths per minute.",
		Details:     "Required, 10 to 40.",
	},
	intake.FieldOxygen: {
		Title:       "OXYGEN SATURATION",
		Description: "Peripheral capillary oxygen saturation.",
		Details:     "Required, 70 to 100 percent.",
	},
	intake.FieldConsultationID: {
		Title:       "CONSULTATION ID",
		Description: "Identifier of the consultation to edit.",
		Details:     "Format: CONS-DDMMYYYY-XXXXXXXX, as returned when it was recorded.",
	},
	intake.FieldConsultDate: {
		Title:       "CONSULTATION DATE",
		Description: "Day the consultation took place.",
		Details:     "Format: YYYY-MM-DD. Leave empty for today.",
	},
	intake.FieldRandomGlucose: {
		Title:       "LAB VALUES",
		Description: "Baseline laboratory results, when available.",
		Details:     "Optional. A number of at least 0 with at most two decimals.",
	},
	intake.FieldPhysicalPain: {
		Title:       "PAIN SCORES",
		Description: "Self-reported pain on a 0 to 10 scale.",
		Details:     "Optional. A number from 0 to 10, empty when not assessed.",
	},
	intake.FieldRole: {
		Title:       "ROLE",
		Description: "Access role of the new account.",
		Details: `Doctors, nurses and community health workers need a speciality and a hospital.
The Admin role requires the admin secret key.`,
	},
	intake.FieldSpeciality: {
		Title:       "SPECIALITY AND HOSPITAL",
		Description: "Where and in what field the clinician works.",
		Details:     "Required for doctors, nurses and community health workers.",
	},
	intake.FieldSecretKey: {
		Title:       "ADMIN SECRET KEY",
		Description: "Shared secret that authorises new administrators.",
		Details:     "Required only for the Admin role.",
	},
	intake.FieldEmail: {
		Title:       "EMAIL",
		Description: "Login of the new account.",
		Details:     "Required. Must be a valid address and not already registered.",
	},
	intake.FieldPassword: {
		Title:       "PASSWORD",
		Description: "Account password.",
		Details:     "Required. The confirmation must match exactly.",
	},
	ChecklistKey: {
		Title:       "CHECKLIST",
		Description: "Select every item that applies.",
		Details:     "Space toggles an item. Items missing from the list go into the free-text field below, separated by commas.",
	},
}

func init() {
	for _, alias := range []struct{ from, to string }{
		{intake.FieldDistrict, intake.FieldProvince},
		{intake.FieldSector, intake.FieldProvince},
		{intake.FieldCell, intake.FieldProvince},
		{intake.FieldVillage, intake.FieldProvince},
		{intake.FieldPsychoPain, intake.FieldPhysicalPain},
		{intake.FieldSpiritualPain, intake.FieldPhysicalPain},
		{intake.FieldConfirm, intake.FieldPassword},
		{intake.FieldFastingGlucose, intake.FieldRandomGlucose},
		{intake.FieldHbA1c, intake.FieldRandomGlucose},
		{intake.FieldPeakFlow, intake.FieldRandomGlucose},
		{intake.FieldHospital, intake.FieldSpeciality},
	} {
		Texts[alias.from] = Texts[alias.to]
	}
}
