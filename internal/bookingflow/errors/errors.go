package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid booking input")

	ErrInvalidAssignment = errors.New("stylist assigned to a service that is not selected")

	ErrEmptySelection = errors.New("at least one service must be selected")

	ErrIncompleteBooking = errors.New("booking is missing branch, date, time or services")

	ErrSubmission = errors.New("appointment submission failed")

	ErrCommitInProgress = errors.New("a commit is already in progress for this booking")

	ErrSessionNotFound = errors.New("booking session not found")

	ErrInvalidSessionID = errors.New("invalid booking session ID format")

	ErrConcurrentUpdate = errors.New("booking session was modified concurrently")
)

// SubmissionError carries the reason the appointment sink rejected a commit.
// It matches ErrSubmission with errors.Is and unwraps to the cause.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	if e.Cause == nil {
		return ErrSubmission.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSubmission.Error(), e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}

// ValidationError names the offending field of a rejected setter call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
