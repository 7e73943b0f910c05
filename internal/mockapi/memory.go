package mockapi

import (
	"context"
	"strings"
	"sync"

	"github.com/mrsinham/ncdintake/internal/intake"
)

type consultKey struct {
	reg intake.Registry
	id  string
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	patients []intake.PatientRegistration
	vitals   map[intake.Registry][]intake.VitalsRecord
	consults map[consultKey]intake.ConsultationPayload
	users    map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vitals:   make(map[intake.Registry][]intake.VitalsRecord),
		consults: make(map[consultKey]intake.ConsultationPayload),
		users:    make(map[string]User),
	}
}

func (m *MemoryStore) CreatePatient(_ context.Context, p intake.PatientRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.patients {
		if existing.Phone == p.Phone {
			return ErrDuplicatePhone
		}
		if existing.NationalID == p.NationalID {
			return ErrDuplicateID
		}
	}
	m.patients = append(m.patients, p)
	return nil
}

func (m *MemoryStore) ListPatients(_ context.Context, reg intake.Registry) ([]intake.PatientRegistration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []intake.PatientRegistration{}
	for _, p := range m.patients {
		if reg == "" || strings.EqualFold(p.Condition, reg.Title()) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) PatientExists(_ context.Context, phone string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.patients {
		if p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) AddVitals(_ context.Context, reg intake.Registry, v intake.VitalsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vitals[reg] = append(m.vitals[reg], v)
	return nil
}

func (m *MemoryStore) ListVitals(_ context.Context, reg intake.Registry, phone string) ([]intake.VitalsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []intake.VitalsRecord{}
	for _, v := range m.vitals[reg] {
		if phone == "" || v.Phone == phone {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *MemoryStore) AddConsultation(_ context.Context, reg intake.Registry, c intake.ConsultationPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := consultKey{reg, c.ConsultationID}
	if _, ok := m.consults[k]; ok {
		return ErrDuplicateConsult
	}
	m.consults[k] = c
	return nil
}

func (m *MemoryStore) UpdateConsultation(_ context.Context, reg intake.Registry, c intake.ConsultationPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := consultKey{reg, c.ConsultationID}
	old, ok := m.consults[k]
	if !ok || old.Phone != c.Phone {
		return ErrNotFound
	}
	m.consults[k] = c
	return nil
}

func (m *MemoryStore) DeleteConsultation(_ context.Context, reg intake.Registry, phone, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := consultKey{reg, id}
	old, ok := m.consults[k]
	if !ok || phone != "" && old.Phone != phone {
		return ErrNotFound
	}
	delete(m.consults, k)
	return nil
}

// Consultation returns a stored consultation, for tests and demos.
func (m *MemoryStore) Consultation(reg intake.Registry, id string) (intake.ConsultationPayload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consults[consultKey{reg, id}]
	return c, ok
}

func (m *MemoryStore) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := m.users[email]; ok {
		return ErrDuplicateEmail
	}
	for _, existing := range m.users {
		if existing.Phone == u.Phone {
			return ErrDuplicatePhone
		}
	}
	m.users[email] = u
	return nil
}

func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
