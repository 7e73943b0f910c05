package intake

// Field names as they appear in WizardState and in request bodies.
const (
	FieldFirstName      = "fname"
	FieldLastName       = "lname"
	FieldBirthDate      = "dob"
	FieldGender         = "gender"
	FieldHeight         = "height"
	FieldWeight         = "weight"
	FieldNationalID     = "id"
	FieldPhone          = "phone_number"
	FieldProvince       = "province"
	FieldDistrict       = "district"
	FieldSector         = "sector"
	FieldCell           = "cell"
	FieldVillage        = "village"
	FieldCondition      = "condition"
	FieldTemperature    = "temperature"
	FieldBloodPressure  = "blood_pressure"
	FieldHeartRate      = "heart_rate"
	FieldRespiratory    = "respiratory_rate"
	FieldOxygen         = "oxygen_saturation"
	FieldRandomGlucose  = "random_glucose"
	FieldFastingGlucose = "fasting_glucose"
	FieldHbA1c          = "hba1c"
	FieldPeakFlow       = "peak_flow"
	FieldConsultationID = "consultation_id"
	FieldConsultDate    = "consult_date"
	FieldPhysicalPain   = "physical_pain"
	FieldPsychoPain     = "psychological_pain"
	FieldSpiritualPain  = "spiritual_pain"
	FieldComment        = "comment"
	FieldEmail          = "email"
	FieldRole           = "role"
	FieldSpeciality     = "speciality"
	FieldHospital       = "hospital"
	FieldPassword       = "password"
	FieldConfirm        = "confirm_password"
	FieldSecretKey      = "secret_key"
)

// Roles offered by the user registration form.
const (
	RoleAdmin     = "Admin"
	RoleDoctor    = "Doctor"
	RoleNurse     = "Nurse"
	RoleCHW       = "Community Health Worker"
	RoleDataClerk = "Data Clerk"
)

// ClinicalRoles need a speciality and a hospital.
var ClinicalRoles = []string{RoleDoctor, RoleNurse, RoleCHW}

// Genders is the fixed set accepted by the gender field.
var Genders = []string{"male", "female", "other"}
