package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrNoActiveExperiment    = errors.New("no active experiment")
	ErrActiveExperimentExist = errors.New("active experiment already exists")
)

// Precondition names reported by ConflictError.
const (
	PreconditionActiveExists     = "active_experiment_exists"
	PreconditionNotActive        = "experiment_not_active"
	PreconditionNotEnded         = "experiment_not_ended"
	PreconditionTerminal         = "experiment_terminal"
	PreconditionAnotherActive    = "another_experiment_active"
	PreconditionNotPendingReview = "experiment_not_pending_review"
	PreconditionMissingWindows   = "missing_windows"
	PreconditionConcurrentUpdate = "concurrent_update"
)

// ConflictError reports a state-machine guard violation. It matches
// ErrConflict with errors.Is.
type ConflictError struct {
	Precondition string
	Status       string
	RelatedID    string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("conflict: %s", e.Precondition)
	if e.Status != "" {
		msg += fmt.Sprintf(" (status=%s)", e.Status)
	}
	if e.RelatedID != "" {
		msg += fmt.Sprintf(" (experiment=%s)", e.RelatedID)
	}
	return msg
}

func (e *ConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	return target == ErrActiveExperimentExist && e.Precondition == PreconditionActiveExists
}

func Conflict(precondition, status string) *ConflictError {
	return &ConflictError{Precondition: precondition, Status: status}
}

// PreconditionOf returns the failed precondition carried by err, if any.
func PreconditionOf(err error) (string, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Precondition, true
	}
	return "", false
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
