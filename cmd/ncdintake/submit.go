package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/mrsinham/ncdintake/internal/intake"
)

// ErrRejected is returned when a submission did not go through, so the
// process exits non-zero.
var ErrRejected = errors.New("submission not accepted")

// StepError reports the invalid fields of a draft step.
type StepError struct {
	Step   int
	Title  string
	Fields map[string]string
}

func (e *StepError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	msg := fmt.Sprintf("step %d (%s) is invalid:", e.Step, e.Title)
	for _, n := range names {
		msg += fmt.Sprintf("\n  %s: %s", n, e.Fields[n])
	}
	return msg
}

// submitDraft walks ctrl from its first step to the last, validating each
// one as the wizard would, then submits.
func submitDraft(ctx context.Context, ctrl *intake.Controller) (*intake.Result, error) {
	flow := ctrl.Flow()
	state := ctrl.State()
	state.Step = 1
	for {
		n := state.Step
		if !ctrl.Next() {
			return nil, &StepError{Step: n, Title: flow.StepAt(n).Title, Fields: state.Errors}
		}
		if n == flow.LastStep() {
			break
		}
	}
	return ctrl.Submit(ctx)
}

// report prints the outcome of a submission.
func report(w io.Writer, res *intake.Result) error {
	if res.OK {
		fmt.Fprintln(w, res.Notification)
		return nil
	}
	fmt.Fprintln(w, res.Notification)
	names := make([]string, 0, len(res.FieldErrors))
	for k := range res.FieldErrors {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s: %s\n", n, res.FieldErrors[n])
	}
	return ErrRejected
}
