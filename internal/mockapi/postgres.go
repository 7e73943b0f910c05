package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrsinham/ncdintake/internal/intake"
)

// Schema is safe to execute multiple times.
const Schema = `
CREATE TABLE IF NOT EXISTS patients (
    phone       TEXT PRIMARY KEY,
    national_id TEXT NOT NULL,
    condition   TEXT NOT NULL,
    body        JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT patients_national_id_key UNIQUE (national_id)
);

CREATE TABLE IF NOT EXISTS vitals (
    id          TEXT PRIMARY KEY,
    registry    TEXT NOT NULL,
    phone       TEXT NOT NULL REFERENCES patients (phone),
    body        JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS consultations (
    registry        TEXT NOT NULL,
    consultation_id TEXT NOT NULL,
    phone           TEXT NOT NULL,
    body            JSONB NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (registry, consultation_id)
);

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    phone         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    body          JSONB NOT NULL,
    CONSTRAINT users_email_key UNIQUE (email),
    CONSTRAINT users_phone_key UNIQUE (phone)
);
`

// pgDB is the subset of *pgxpool.Pool the store needs.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool opens a pgx pool and pings the database.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PGStore keeps records in PostgreSQL as JSONB documents.
type PGStore struct {
	db pgDB
}

func NewPGStore(db pgDB) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the tables when they are missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// mapPgError turns unique violations into the API error of the constraint.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "patients_pkey", "users_phone_key":
		return ErrDuplicatePhone
	case "patients_national_id_key":
		return ErrDuplicateID
	case "users_email_key":
		return ErrDuplicateEmail
	case "consultations_pkey":
		return ErrDuplicateConsult
	}
	return err
}

func (s *PGStore) CreatePatient(ctx context.Context, p intake.PatientRegistration) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal patient: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO patients (phone, national_id, condition, body) VALUES ($1, $2, $3, $4)`,
		p.Phone, p.NationalID, strings.ToLower(p.Condition), body)
	if err != nil {
		return fmt.Errorf("insert patient: %w", mapPgError(err))
	}
	return nil
}

func (s *PGStore) ListPatients(ctx context.Context, reg intake.Registry) ([]intake.PatientRegistration, error) {
	condition := ""
	if reg != "" {
		condition = strings.ToLower(reg.Title())
	}
	rows, err := s.db.Query(ctx,
		`SELECT body FROM patients WHERE $1::text = '' OR condition = $1 ORDER BY created_at`,
		condition)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return collectJSON[intake.PatientRegistration](rows)
}

func (s *PGStore) PatientExists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE phone = $1)`, phone).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup patient: %w", err)
	}
	return exists, nil
}

func (s *PGStore) AddVitals(ctx context.Context, reg intake.Registry, v intake.VitalsRecord) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal vitals: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO vitals (id, registry, phone, body) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), string(reg), v.Phone, body)
	if err != nil {
		return fmt.Errorf("insert vitals: %w", mapPgError(err))
	}
	return nil
}

func (s *PGStore) ListVitals(ctx context.Context, reg intake.Registry, phone string) ([]intake.VitalsRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT body FROM vitals WHERE registry = $1 AND ($2::text = '' OR phone = $2) ORDER BY created_at`,
		string(reg), phone)
	if err != nil {
		return nil, fmt.Errorf("list vitals: %w", err)
	}
	return collectJSON[intake.VitalsRecord](rows)
}

func (s *PGStore) AddConsultation(ctx context.Context, reg intake.Registry, c intake.ConsultationPayload) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal consultation: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO consultations (registry, consultation_id, phone, body) VALUES ($1, $2, $3, $4)`,
		string(reg), c.ConsultationID, c.Phone, body)
	if err != nil {
		return fmt.Errorf("insert consultation: %w", mapPgError(err))
	}
	return nil
}

func (s *PGStore) UpdateConsultation(ctx context.Context, reg intake.Registry, c intake.ConsultationPayload) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal consultation: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE consultations SET body = $4, updated_at = now()
WHERE registry = $1 AND consultation_id = $2 AND phone = $3`,
		string(reg), c.ConsultationID, c.Phone, body)
	if err != nil {
		return fmt.Errorf("update consultation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteConsultation(ctx context.Context, reg intake.Registry, phone, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM consultations WHERE registry = $1 AND consultation_id = $2 AND ($3::text = '' OR phone = $3)`,
		string(reg), id, phone)
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) CreateUser(ctx context.Context, u User) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO users (id, email, phone, password_hash, body) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, strings.ToLower(u.Email), u.Phone, u.PasswordHash, body)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapPgError(err))
	}
	return nil
}

func (s *PGStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	var (
		body []byte
		hash string
	)
	err := s.db.QueryRow(ctx,
		`SELECT body, password_hash FROM users WHERE email = $1`, strings.ToLower(email)).Scan(&body, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	u.PasswordHash = hash
	return &u, nil
}

func collectJSON[T any](rows pgx.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
