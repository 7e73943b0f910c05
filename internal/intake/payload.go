package intake

import "time"

// PastHistory is the nested past-history object of a registration.
type PastHistory struct {
	PatientMedicalHistory []string    `json:"patientMedicalHistory"`
	Medications           Medications `json:"medications"`
	FamilyHistory         []string    `json:"familyHistory"`
	Allergies             []string    `json:"allergies"`
}

// Medications wraps the medication checklist.
type Medications struct {
	Checklist []string `json:"checklist"`
}

// PatientRegistration is the body of /registerPatient.
type PatientRegistration struct {
	FirstName        string      `json:"fname"`
	LastName         string      `json:"lname"`
	DateOfBirth      string      `json:"dob"`
	Age              int         `json:"age"`
	Gender           string      `json:"gender"`
	Height           string      `json:"height"`
	Weight           string      `json:"weight"`
	BMI              *string     `json:"bmi"`
	NationalID       string      `json:"id"`
	Phone            string      `json:"phone_number"`
	Province         string      `json:"province"`
	District         string      `json:"district"`
	Sector           string      `json:"sector"`
	Cell             string      `json:"cell"`
	Village          string      `json:"village,omitempty"`
	Condition        string      `json:"condition"`
	Temperature      string      `json:"temperature,omitempty"`
	RandomGlucose    string      `json:"random_glucose,omitempty"`
	FastingGlucose   string      `json:"fasting_glucose,omitempty"`
	HbA1c            string      `json:"hba1c,omitempty"`
	PeakFlow         string      `json:"peak_flow,omitempty"`
	ClinicalSymptoms []string    `json:"clinicalSymptoms"`
	DangerSigns      []string    `json:"dangerSigns"`
	Complications    []string    `json:"complications"`
	Comorbidities    []string    `json:"comorbidities"`
	PastHistory      PastHistory `json:"pastHistory"`
	RegistrationDate string      `json:"registrationDate"`
}

// NewPatientRegistration assembles a registration from a validated state.
func NewPatientRegistration(reg Registry, s *WizardState, now time.Time) PatientRegistration {
	age, _ := AgeFromString(s.Value(FieldBirthDate), now)
	condition := s.Value(FieldCondition)
	if condition == "" {
		condition = reg.Title()
	}
	history := PastHistoryGroups()
	return PatientRegistration{
		FirstName:        s.Value(FieldFirstName),
		LastName:         s.Value(FieldLastName),
		DateOfBirth:      s.Value(FieldBirthDate),
		Age:              age,
		Gender:           s.Value(FieldGender),
		Height:           s.Value(FieldHeight),
		Weight:           s.Value(FieldWeight),
		BMI:              FormatBMI(s.Value(FieldWeight), s.Value(FieldHeight)),
		NationalID:       s.Value(FieldNationalID),
		Phone:            s.Value(FieldPhone),
		Province:         s.Value(FieldProvince),
		District:         s.Value(FieldDistrict),
		Sector:           s.Value(FieldSector),
		Cell:             s.Value(FieldCell),
		Village:          s.Value(FieldVillage),
		Condition:        condition,
		Temperature:      s.Value(FieldTemperature),
		RandomGlucose:    s.Value(FieldRandomGlucose),
		FastingGlucose:   s.Value(FieldFastingGlucose),
		HbA1c:            s.Value(FieldHbA1c),
		PeakFlow:         s.Value(FieldPeakFlow),
		ClinicalSymptoms: Symptoms(reg).FromState(s),
		DangerSigns:      DangerSigns(reg).FromState(s),
		Complications:    Complications(reg).FromState(s),
		Comorbidities:    Comorbidities(reg).FromState(s),
		PastHistory: PastHistory{
			PatientMedicalHistory: history[0].FromState(s),
			Medications:           Medications{Checklist: history[1].FromState(s)},
			FamilyHistory:         history[2].FromState(s),
			Allergies:             history[3].FromState(s),
		},
		RegistrationDate: ShortDate(now),
	}
}

// VitalsRecord is the body of /register<Reg>Vitals.
type VitalsRecord struct {
	Phone            string  `json:"phone_number"`
	Height           float64 `json:"height"`
	Weight           float64 `json:"weight"`
	Temperature      float64 `json:"temperature"`
	BloodPressure    string  `json:"blood_pressure"`
	HeartRate        float64 `json:"heart_rate"`
	RespiratoryRate  float64 `json:"respiratory_rate"`
	OxygenSaturation float64 `json:"oxygen_saturation"`
	BMI              *string `json:"bmi"`
	ConsultationID   string  `json:"consultationId"`
	ConsultationDate string  `json:"consultationDate"`
}

// NewVitalsRecord assembles a vitals record. Height is read in centimetres.
func NewVitalsRecord(s *WizardState, now time.Time, token string) VitalsRecord {
	return VitalsRecord{
		Phone:            s.Value(FieldPhone),
		Height:           parseFloat(s.Value(FieldHeight)),
		Weight:           parseFloat(s.Value(FieldWeight)),
		Temperature:      parseFloat(s.Value(FieldTemperature)),
		BloodPressure:    s.Value(FieldBloodPressure),
		HeartRate:        parseFloat(s.Value(FieldHeartRate)),
		RespiratoryRate:  parseFloat(s.Value(FieldRespiratory)),
		OxygenSaturation: parseFloat(s.Value(FieldOxygen)),
		BMI:              FormatBMICentimetres(s.Value(FieldWeight), s.Value(FieldHeight)),
		ConsultationID:   ConsultationID(now, token),
		ConsultationDate: LongDate(now),
	}
}

// ConsultationPayload is the body of the consultation add and edit endpoints.
type ConsultationPayload struct {
	Phone             string   `json:"phone_number"`
	ConsultationID    string   `json:"consultationId"`
	ConsultDate       string   `json:"consultDate"`
	ClinicalSymptoms  []string `json:"clinicalSymptoms"`
	DangerSigns       []string `json:"dangerSigns"`
	Complications     []string `json:"complications"`
	Comorbidities     []string `json:"comorbidities"`
	PhysicalPain      *float64 `json:"physicalPain"`
	PsychologicalPain *float64 `json:"psychologicalPain"`
	SpiritualPain     *float64 `json:"spiritualPain"`
	Comment           string   `json:"comment"`
}

// NewConsultationPayload assembles a consultation. A consultation_id in s
// is kept as is; otherwise one is generated from now and token. The consult
// date is consult_date when set, else now.
func NewConsultationPayload(reg Registry, s *WizardState, now time.Time, token string) ConsultationPayload {
	id := s.Value(FieldConsultationID)
	if id == "" {
		id = ConsultationID(now, token)
	}
	date := now
	if d, err := time.Parse(birthDateLayout, s.Value(FieldConsultDate)); err == nil {
		date = d
	}
	return ConsultationPayload{
		Phone:             s.Value(FieldPhone),
		ConsultationID:    id,
		ConsultDate:       ShortDate(date),
		ClinicalSymptoms:  Symptoms(reg).FromState(s),
		DangerSigns:       DangerSigns(reg).FromState(s),
		Complications:     Complications(reg).FromState(s),
		Comorbidities:     Comorbidities(reg).FromState(s),
		PhysicalPain:      optionalFloat(s.Value(FieldPhysicalPain)),
		PsychologicalPain: optionalFloat(s.Value(FieldPsychoPain)),
		SpiritualPain:     optionalFloat(s.Value(FieldSpiritualPain)),
		Comment:           s.Value(FieldComment),
	}
}

// UserRegistration is the body of /register. The admin secret is checked
// locally and never sent.
type UserRegistration struct {
	FirstName  string `json:"fname"`
	LastName   string `json:"lname"`
	Email      string `json:"email"`
	Phone      string `json:"phone_number"`
	Role       string `json:"role"`
	Speciality string `json:"speciality,omitempty"`
	Hospital   string `json:"hospital,omitempty"`
	Password   string `json:"password"`
}

// NewUserRegistration assembles a user registration.
func NewUserRegistration(s *WizardState) UserRegistration {
	return UserRegistration{
		FirstName:  s.Value(FieldFirstName),
		LastName:   s.Value(FieldLastName),
		Email:      s.Value(FieldEmail),
		Phone:      s.Value(FieldPhone),
		Role:       s.Value(FieldRole),
		Speciality: s.Value(FieldSpeciality),
		Hospital:   s.Value(FieldHospital),
		Password:   s.Fields[FieldPassword],
	}
}

// DeleteRequest is the body of /delete<Reg>Consultation.
type DeleteRequest struct {
	Phone          string `json:"phone_number"`
	ConsultationID string `json:"consultationId"`
}

func parseFloat(s string) float64 {
	f, _ := parseNumber(s)
	return f
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, ok := parseNumber(s)
	if !ok {
		return nil
	}
	return &f
}
