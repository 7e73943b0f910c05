package mockapi

import "errors"

// Error texts are part of the API contract: clients match on "phone" and
// "id" substrings.
var (
	ErrDuplicatePhone   = errors.New("phone number already exists")
	ErrDuplicateID      = errors.New("national id already exists")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrUnknownPatient   = errors.New("no patient registered with this phone number")
	ErrNotFound         = errors.New("consultation not found")
	ErrDuplicateConsult = errors.New("consultation already exists")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrUnauthorized     = errors.New("missing or invalid bearer token")
)
