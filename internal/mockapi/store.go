package mockapi

import (
	"context"

	"github.com/mrsinham/ncdintake/internal/intake"
)

// User is a registered account. The password is only kept as a bcrypt hash.
type User struct {
	ID           string `json:"userId"`
	FirstName    string `json:"fname"`
	LastName     string `json:"lname"`
	Email        string `json:"email"`
	Phone        string `json:"phone_number"`
	Role         string `json:"role"`
	Speciality   string `json:"speciality,omitempty"`
	Hospital     string `json:"hospital,omitempty"`
	PasswordHash string `json:"-"`
}

// Store persists registry records. Implementations must be safe for
// concurrent use.
type Store interface {
	CreatePatient(ctx context.Context, p intake.PatientRegistration) error
	ListPatients(ctx context.Context, reg intake.Registry) ([]intake.PatientRegistration, error)
	PatientExists(ctx context.Context, phone string) (bool, error)

	AddVitals(ctx context.Context, reg intake.Registry, v intake.VitalsRecord) error
	ListVitals(ctx context.Context, reg intake.Registry, phone string) ([]intake.VitalsRecord, error)

	AddConsultation(ctx context.Context, reg intake.Registry, c intake.ConsultationPayload) error
	UpdateConsultation(ctx context.Context, reg intake.Registry, c intake.ConsultationPayload) error
	DeleteConsultation(ctx context.Context, reg intake.Registry, phone, id string) error

	CreateUser(ctx context.Context, u User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
}
