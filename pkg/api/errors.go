package api

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowValidation is the shared identity of every registration
	// failure. Use errors.Is to detect it; the message carries the detail.
	ErrWorkflowValidation = errors.New("workflow validation error")

	// ErrEventNotAccepted is returned by Step.Call when the event's type is
	// not one of the step's accepted events.
	ErrEventNotAccepted = errors.New("event not accepted by step")
)

// WorkflowValidationError reports a malformed step or workflow definition.
// Callers should not branch on its fields; they exist for diagnostics.
type WorkflowValidationError struct {
	// Step is the name of the offending step, if known.
	Step string
	Msg  string
}

func (e *WorkflowValidationError) Error() string {
	if e.Step != "" {
		return "step " + e.Step + ": " + e.Msg
	}
	return e.Msg
}

func (e *WorkflowValidationError) Unwrap() error {
	return ErrWorkflowValidation
}

func validationErrorf(step, format string, args ...any) *WorkflowValidationError {
	return &WorkflowValidationError{
		Step: step,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err (or any error it wraps or joins)
// is a registration failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowValidation)
}
