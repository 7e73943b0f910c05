package intake

import "strings"

// ChecklistItem is one checkbox of a checklist group.
type ChecklistItem struct {
	Key   string
	Label string
}

// ChecklistGroup is a named, ordered set of checkboxes with a free-text
// "additional" field for anything the list does not cover.
type ChecklistGroup struct {
	Name  string
	Title string
	Items []ChecklistItem
}

// FlagName returns the WizardState flag name of an item.
func (g ChecklistGroup) FlagName(key string) string {
	return g.Name + "." + key
}

// AdditionalField returns the WizardState field name of the free-text input.
func (g ChecklistGroup) AdditionalField() string {
	return g.Name + ".additional"
}

// Assemble returns the labels of the checked items in declared order, then
// the comma-separated entries of additional in text order. Entries are
// trimmed and empty ones dropped; nothing is de-duplicated.
func (g ChecklistGroup) Assemble(flags map[string]bool, additional string) []string {
	out := []string{}
	for _, item := range g.Items {
		if flags[item.Key] {
			out = append(out, item.Label)
		}
	}
	for _, tok := range strings.Split(additional, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// FromState assembles the group from the flags and additional field of s.
func (g ChecklistGroup) FromState(s *WizardState) []string {
	flags := make(map[string]bool, len(g.Items))
	for _, item := range g.Items {
		flags[item.Key] = s.Checked(g.FlagName(item.Key))
	}
	return g.Assemble(flags, s.Fields[g.AdditionalField()])
}

// Checklist group names.
const (
	GroupSymptoms       = "clinical_symptoms"
	GroupDangerSigns    = "danger_signs"
	GroupComplications  = "complications"
	GroupComorbidities  = "comorbidities"
	GroupMedicalHistory = "medical_history"
	GroupMedications    = "medications"
	GroupFamilyHistory  = "family_history"
	GroupAllergies      = "allergies"
)

func items(pairs ...string) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ChecklistItem{Key: pairs[i], Label: pairs[i+1]})
	}
	return out
}

var symptoms = map[Registry][]ChecklistItem{
	Diabetes: items(
		"polyuria", "Polyuria",
		"polydipsia", "Polydipsia",
		"polyphagia", "Polyphagia",
		"weight_loss", "Unexplained weight loss",
		"fatigue", "Fatigue",
		"blurred_vision", "Blurred vision",
		"slow_healing", "Slow healing wounds",
		"numbness", "Numbness or tingling in hands/feet",
	),
	Hypertension: items(
		"headache", "Headache",
		"dizziness", "Dizziness",
		"palpitations", "Palpitations",
		"nosebleeds", "Nosebleeds",
		"blurred_vision", "Blurred vision",
		"fatigue", "Fatigue",
	),
	Asthma: items(
		"wheezing", "Wheezing",
		"cough", "Cough",
		"chest_tightness", "Chest tightness",
		"shortness_of_breath", "Shortness of breath",
		"night_symptoms", "Night-time symptoms",
	),
}

var dangerSigns = map[Registry][]ChecklistItem{
	Diabetes: items(
		"confusion", "Confusion",
		"vomiting", "Persistent vomiting",
		"deep_breathing", "Deep rapid breathing",
		"unconscious", "Loss of consciousness",
		"foot_ulcer", "Infected foot ulcer",
	),
	Hypertension: items(
		"chest_pain", "Chest pain",
		"severe_headache", "Severe headache",
		"weakness", "One-sided weakness",
		"speech", "Difficulty speaking",
		"vision_loss", "Sudden vision loss",
	),
	Asthma: items(
		"cannot_speak", "Unable to speak in sentences",
		"cyanosis", "Blue lips or fingertips",
		"drowsiness", "Drowsiness",
		"silent_chest", "Silent chest",
	),
}

var complications = map[Registry][]ChecklistItem{
	Diabetes: items(
		"retinopathy", "Retinopathy",
		"neuropathy", "Neuropathy",
		"nephropathy", "Nephropathy",
		"foot_disease", "Diabetic foot",
		"cardiovascular", "Cardiovascular disease",
	),
	Hypertension: items(
		"stroke", "Stroke",
		"heart_failure", "Heart failure",
		"kidney_disease", "Chronic kidney disease",
		"retinopathy", "Hypertensive retinopathy",
	),
	Asthma: items(
		"pneumonia", "Pneumonia",
		"hospitalisation", "Hospitalisation in the last year",
		"status_asthmaticus", "Status asthmaticus",
	),
}

var comorbidities = map[Registry][]ChecklistItem{
	Diabetes: items(
		"hypertension", "Hypertension",
		"obesity", "Obesity",
		"dyslipidemia", "Dyslipidemia",
		"hiv", "HIV",
		"tuberculosis", "Tuberculosis",
	),
	Hypertension: items(
		"diabetes", "Diabetes",
		"obesity", "Obesity",
		"dyslipidemia", "Dyslipidemia",
		"hiv", "HIV",
	),
	Asthma: items(
		"allergic_rhinitis", "Allergic rhinitis",
		"gerd", "Gastro-oesophageal reflux",
		"obesity", "Obesity",
		"copd", "COPD",
	),
}

// Symptoms returns the clinical symptoms group of a registry.
func Symptoms(r Registry) ChecklistGroup {
	return ChecklistGroup{Name: GroupSymptoms, Title: "Clinical symptoms", Items: symptoms[r]}
}

// DangerSigns returns the danger signs group of a registry.
func DangerSigns(r Registry) ChecklistGroup {
	return ChecklistGroup{Name: GroupDangerSigns, Title: "Danger signs", Items: dangerSigns[r]}
}

// Complications returns the complications group of a registry.
func Complications(r Registry) ChecklistGroup {
	return ChecklistGroup{Name: GroupComplications, Title: "Complications", Items: complications[r]}
}

// Comorbidities returns the comorbidities group of a registry.
func Comorbidities(r Registry) ChecklistGroup {
	return ChecklistGroup{Name: GroupComorbidities, Title: "Comorbidities", Items: comorbidities[r]}
}

// PastHistoryGroups returns the groups of the past history step, in the
// order patientMedicalHistory, medications, familyHistory, allergies.
func PastHistoryGroups() []ChecklistGroup {
	return []ChecklistGroup{
		{Name: GroupMedicalHistory, Title: "Medical history", Items: items(
			"hypertension", "Hypertension",
			"diabetes", "Diabetes",
			"asthma", "Asthma",
			"tuberculosis", "Tuberculosis",
			"surgery", "Previous surgery",
		)},
		{Name: GroupMedications, Title: "Current medications", Items: items(
			"metformin", "Metformin",
			"insulin", "Insulin",
			"amlodipine", "Amlodipine",
			"salbutamol", "Salbutamol inhaler",
			"steroid_inhaler", "Inhaled corticosteroid",
		)},
		{Name: GroupFamilyHistory, Title: "Family history", Items: items(
			"diabetes", "Diabetes",
			"hypertension", "Hypertension",
			"asthma", "Asthma",
			"heart_disease", "Heart disease",
		)},
		{Name: GroupAllergies, Title: "Allergies", Items: items(
			"penicillin", "Penicillin",
			"sulfa", "Sulfa drugs",
			"aspirin", "Aspirin",
			"pollen", "Pollen",
		)},
	}
}
