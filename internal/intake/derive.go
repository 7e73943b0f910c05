package intake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Date layouts used in request bodies.
const (
	ShortDateLayout = "02-01-2006"
	LongDateLayout  = "January 2, 2006"
	idDateLayout    = "02012006"
)

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Age returns the number of full years between dob and now.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || now.Month() == dob.Month() && now.Day() < dob.Day() {
		age--
	}
	return age
}

// AgeFromString parses a YYYY-MM-DD birth date and returns the age at now.
func AgeFromString(dob string, now time.Time) (int, error) {
	t, err := time.Parse(birthDateLayout, strings.TrimSpace(dob))
	if err != nil {
		return 0, fmt.Errorf("parse date of birth %q: %w", dob, err)
	}
	return Age(t, now), nil
}

// ComputeBMI returns weight / height² when both are positive.
func ComputeBMI(weightKg, heightM float64) (float64, bool) {
	if weightKg <= 0 || heightM <= 0 {
		return 0, false
	}
	return weightKg / (heightM * heightM), true
}

// FormatBMI parses the raw weight and height (in metres) and returns the BMI
// rounded to two decimals, or nil when either value is not a positive number.
func FormatBMI(weight, heightM string) *string {
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return nil
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(heightM), 64)
	if err != nil {
		return nil
	}
	bmi, ok := ComputeBMI(w, h)
	if !ok {
		return nil
	}
	s := strconv.FormatFloat(bmi, 'f', 2, 64)
	return &s
}

// FormatBMICentimetres is FormatBMI for a height given in centimetres.
func FormatBMICentimetres(weight, heightCm string) *string {
	h, err := strconv.ParseFloat(strings.TrimSpace(heightCm), 64)
	if err != nil {
		return nil
	}
	return FormatBMI(weight, strconv.FormatFloat(h/100, 'f', -1, 64))
}

// ShortDate formats t as DD-MM-YYYY.
func ShortDate(t time.Time) string {
	return t.Format(ShortDateLayout)
}

// LongDate formats t as "January 2, 2006".
func LongDate(t time.Time) string {
	return t.Format(LongDateLayout)
}

// ConsultationID returns CONS-<DDMMYYYY>-<token>.
func ConsultationID(now time.Time, token string) string {
	return "CONS-" + now.Format(idDateLayout) + "-" + token
}

// RandomToken returns eight upper-case hexadecimal characters.
func RandomToken() string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:8])
}
