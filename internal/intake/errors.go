package intake

import "errors"

var (
	ErrUnknownFlow     = errors.New("unknown flow")
	ErrUnknownRegistry = errors.New("unknown registry")
	ErrNotLastStep     = errors.New("submit is only available on the last step")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrFinished        = errors.New("flow was already submitted")
	ErrNoConsultation  = errors.New("consultation id is required")
)
