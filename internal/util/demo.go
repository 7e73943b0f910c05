package util

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/mrsinham/ncdintake/internal/intake"
)

// Location is one village of the administrative hierarchy.
type Location struct {
	Province, District, Sector, Cell, Village string
}

// Locations is the pool demo patients are placed in.
var Locations = []Location{
	{"Kigali", "Gasabo", "Kimironko", "Bibare", "Amahoro"},
	{"Kigali", "Nyarugenge", "Nyamirambo", "Mumena", "Rugarama"},
	{"Kigali", "Kicukiro", "Niboye", "Nyakabanda", "Gatare"},
	{"Southern", "Huye", "Tumba", "Cyimana", "Gitwa"},
	{"Northern", "Musanze", "Muhoza", "Cyabararika", "Kigombe"},
	{"Eastern", "Rwamagana", "Kigabiro", "Sibagire", "Nyarusange"},
	{"Western", "Rubavu", "Gisenyi", "Umuganda", "Ubumwe"},
}

// Prefill returns a plausible, valid state for flow so demos and manual
// tests do not start from empty forms. If rng is nil, uses the shared
// default RNG.
func Prefill(flow *intake.Flow, rng *rand.Rand, now time.Time) *intake.WizardState {
	if rng == nil {
		rng = defaultRNG
	}
	s := intake.NewWizardState()

	gender := intake.Genders[rng.IntN(2)]
	first, last := GeneratePatientName(gender, rng)
	phone := Phone(rng)

	switch flow.Kind {
	case intake.FlowIntake:
		loc := Locations[rng.IntN(len(Locations))]
		age := 18 + rng.IntN(70)
		dob := now.AddDate(-age, -rng.IntN(12), -rng.IntN(28))
		s.Set(intake.FieldFirstName, first)
		s.Set(intake.FieldLastName, last)
		s.Set(intake.FieldBirthDate, dob.Format("2006-01-02"))
		s.Set(intake.FieldGender, gender)
		s.Set(intake.FieldHeight, fmt.Sprintf("%.2f", 1.45+rng.Float64()*0.5))
		s.Set(intake.FieldWeight, fmt.Sprintf("%.1f", 45+rng.Float64()*60))
		s.Set(intake.FieldNationalID, NationalID(dob, gender, rng))
		s.Set(intake.FieldPhone, phone)
		s.Set(intake.FieldProvince, loc.Province)
		s.Set(intake.FieldDistrict, loc.District)
		s.Set(intake.FieldSector, loc.Sector)
		s.Set(intake.FieldCell, loc.Cell)
		s.Set(intake.FieldVillage, loc.Village)
		s.Set(intake.FieldTemperature, fmt.Sprintf("%.1f", 36+rng.Float64()*1.5))
		checkOne(s, intake.Symptoms(flow.Registry), rng)
	case intake.FlowVitals:
		s.Set(intake.FieldPhone, phone)
		s.Set(intake.FieldHeight, strconv.Itoa(145+rng.IntN(50)))
		s.Set(intake.FieldWeight, strconv.Itoa(45+rng.IntN(60)))
		s.Set(intake.FieldTemperature, fmt.Sprintf("%.1f", 36+rng.Float64()*1.5))
		s.Set(intake.FieldBloodPressure, fmt.Sprintf("%d/%d", 105+rng.IntN(50), 65+rng.IntN(30)))
		s.Set(intake.FieldHeartRate, strconv.Itoa(55+rng.IntN(50)))
		s.Set(intake.FieldRespiratory, strconv.Itoa(12+rng.IntN(10)))
		s.Set(intake.FieldOxygen, strconv.Itoa(92+rng.IntN(9)))
	case intake.FlowConsultation, intake.FlowConsultationEdit:
		s.Set(intake.FieldPhone, phone)
		s.Set(intake.FieldPhysicalPain, strconv.Itoa(rng.IntN(11)))
		checkOne(s, intake.Symptoms(flow.Registry), rng)
	case intake.FlowUser:
		s.Set(intake.FieldFirstName, first)
		s.Set(intake.FieldLastName, last)
		s.Set(intake.FieldEmail, fmt.Sprintf("%s.%s@example.org", lower(first), lower(last)))
		s.Set(intake.FieldPhone, phone)
		s.Set(intake.FieldRole, intake.RoleNurse)
		s.Set(intake.FieldSpeciality, "General practice")
		s.Set(intake.FieldHospital, "Kibagabaga Hospital")
	}
	return s
}

// Phone returns a 10-digit mobile number.
func Phone(rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}
	prefixes := []string{"078", "079", "072", "073"}
	return fmt.Sprintf("%s%07d", prefixes[rng.IntN(len(prefixes))], rng.IntN(10_000_000))
}

// NationalID returns a 16-digit identifier embedding the birth year and
// gender, in the layout of the national ID card.
func NationalID(dob time.Time, gender string, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}
	g := 7
	if gender == "male" {
		g = 8
	}
	return fmt.Sprintf("1%04d%d%07d%03d", dob.Year(), g, rng.IntN(10_000_000), rng.IntN(1000))
}

func checkOne(s *intake.WizardState, g intake.ChecklistGroup, rng *rand.Rand) {
	if len(g.Items) == 0 {
		return
	}
	item := g.Items[rng.IntN(len(g.Items))]
	s.SetFlag(g.FlagName(item.Key), true)
}

func lower(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
