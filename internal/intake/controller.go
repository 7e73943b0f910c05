package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrsinham/ncdintake/internal/apiclient"
)

// GenericFailure is shown when a failure cannot be tied to a field.
const GenericFailure = "Submission failed. Please check your connection and try again."

// Poster sends a JSON body to the registry API.
type Poster interface {
	PostJSON(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// Options tunes a Controller. Zero values pick sensible defaults.
type Options struct {
	Now           func() time.Time
	Token         func() string
	AdminSecret   string
	SubmitTimeout time.Duration
	Logger        zerolog.Logger
}

// Result is the outcome of a submission.
type Result struct {
	OK           bool
	Notification string
	FieldErrors  map[string]string
	Response     *apiclient.Response
}

// Controller drives one flow: navigation, validation and submission.
type Controller struct {
	flow   *Flow
	state  *WizardState
	poster Poster
	opts   Options
	log    zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	finished bool
}

// NewController starts flow on its first step.
func NewController(flow *Flow, poster Poster, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Token == nil {
		opts.Token = RandomToken
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = apiclient.DefaultTimeout
	}
	return &Controller{
		flow:   flow,
		state:  NewWizardState(),
		poster: poster,
		opts:   opts,
		log: opts.Logger.With().
			Str("flow", string(flow.Kind)).
			Str("registry", string(flow.Registry)).
			Logger(),
	}
}

// Flow returns the flow being driven.
func (c *Controller) Flow() *Flow { return c.flow }

// State returns the live wizard state. Callers mutate it through Set and
// SetFlag between navigation calls.
func (c *Controller) State() *WizardState { return c.state }

// Restore replaces the state, clamping its step into the flow.
func (c *Controller) Restore(s *WizardState) {
	s = s.Clone()
	if s.Step < 1 {
		s.Step = 1
	}
	if s.Step > c.flow.LastStep() {
		s.Step = c.flow.LastStep()
	}
	c.state = s
}

// Finished reports whether the flow was submitted successfully.
func (c *Controller) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// IsLastStep reports whether the current step is the final one.
func (c *Controller) IsLastStep() bool {
	return c.state.Step == c.flow.LastStep()
}

func (c *Controller) ruleContext() RuleContext {
	return RuleContext{State: c.state, Now: c.opts.Now(), AdminSecret: c.opts.AdminSecret}
}

// Validate re-validates the current step and replaces State().Errors.
// It returns true when the step is valid.
func (c *Controller) Validate() bool {
	c.state.Errors = c.flow.Validate(c.state.Step, c.state, c.ruleContext())
	return len(c.state.Errors) == 0
}

// Next validates the current step and advances when it is valid. On the
// last step a valid Next stays in place.
func (c *Controller) Next() bool {
	if !c.Validate() {
		c.log.Debug().Int("step", c.state.Step).Int("errors", len(c.state.Errors)).Msg("step invalid")
		return false
	}
	if c.state.Step < c.flow.LastStep() {
		c.state.Step++
	}
	return true
}

// Previous moves back one step without validating.
func (c *Controller) Previous() {
	if c.state.Step > 1 {
		c.state.Step--
	}
}

// Payload assembles the request body from the current state.
func (c *Controller) Payload() any {
	return c.flow.Payload(c.state, BuildEnv{Now: c.opts.Now(), Token: c.opts.Token()})
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.finished:
		return ErrFinished
	case c.inFlight:
		return ErrSubmitInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Controller) end(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if ok {
		c.finished = true
	}
}

// Submit validates the last step, sends the payload and interprets the
// response. API rejections and transport failures are reported through the
// Result; the returned error is only set when Submit is misused.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	if !c.IsLastStep() {
		return nil, ErrNotLastStep
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	ok := false
	defer func() { c.end(ok) }()

	if !c.Validate() {
		return &Result{FieldErrors: c.state.Errors}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.SubmitTimeout)
	defer cancel()

	payload := c.Payload()
	resp, err := c.poster.PostJSON(ctx, c.flow.Endpoint, payload)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.flow.Endpoint).Msg("submission failed")
		msg := GenericFailure
		if errors.Is(err, apiclient.ErrCircuitOpen) {
			msg = "The registry service is unavailable. Please try again later."
		}
		return &Result{Notification: msg, FieldErrors: map[string]string{}}, nil
	}
	if resp.OK() {
		ok = true
		c.log.Info().Str("endpoint", c.flow.Endpoint).Msg("submission accepted")
		return &Result{OK: true, Notification: c.flow.Success, FieldErrors: map[string]string{}, Response: resp}, nil
	}

	fieldErrs := c.mapError(resp.Error)
	c.state.Errors = fieldErrs
	c.log.Warn().Str("endpoint", c.flow.Endpoint).Str("api_error", resp.Error).Int("mapped", len(fieldErrs)).Msg("submission rejected")
	res := &Result{FieldErrors: fieldErrs, Response: resp}
	if len(fieldErrs) == 0 {
		res.Notification = GenericFailure
		if resp.Error != "" {
			res.Notification = "Submission failed: " + resp.Error
		}
	} else {
		res.Notification = "Please correct the highlighted fields."
	}
	return res, nil
}

// mapError matches apiErr case-insensitively against the error tokens of
// the flow.
func (c *Controller) mapError(apiErr string) map[string]string {
	out := make(map[string]string)
	lower := strings.ToLower(apiErr)
	if lower == "" {
		return out
	}
	for _, ef := range c.flow.ErrorFields {
		if strings.Contains(lower, ef.Token) {
			out[ef.Field] = ef.Message
		}
	}
	return out
}

// DeleteConsultation removes a consultation without a wizard.
func DeleteConsultation(ctx context.Context, p Poster, reg Registry, phone, consultationID string) (*Result, error) {
	if strings.TrimSpace(consultationID) == "" {
		return nil, ErrNoConsultation
	}
	resp, err := p.PostJSON(ctx, reg.Endpoint("delete", "Consultation"), DeleteRequest{
		Phone:          strings.TrimSpace(phone),
		ConsultationID: strings.TrimSpace(consultationID),
	})
	if err != nil {
		return &Result{Notification: GenericFailure, FieldErrors: map[string]string{}}, nil
	}
	if !resp.OK() {
		msg := GenericFailure
		if resp.Error != "" {
			msg = "Delete failed: " + resp.Error
		}
		return &Result{Notification: msg, FieldErrors: map[string]string{}, Response: resp}, nil
	}
	return &Result{OK: true, Notification: "Consultation deleted", FieldErrors: map[string]string{}, Response: resp}, nil
}
