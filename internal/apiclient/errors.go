package apiclient

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrCircuitOpen       = errors.New("registry api unavailable: circuit open")
	ErrNoBaseURL         = errors.New("base url is required")
	ErrRequestFailed     = errors.New("request failed")
)
