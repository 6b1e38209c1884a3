package models

import (
	"errors"
	"fmt"

	"benefits-bff/pkg/platform/sentinel"
)

// Field names reported by MissingFieldError. They match the JSON names.
const (
	FieldCustomerID   = "customerId"
	FieldPlanID       = "planId"
	FieldEnrollmentID = "enrollmentId"
)

// MissingFieldError names the first required field found empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

// InvalidTransitionError reports an illegal status move.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition enrollment from %s to %s", e.From, e.To)
}

// Unwrap lets stores and services match it with sentinel.ErrInvalidState.
func (e *InvalidTransitionError) Unwrap() error {
	return sentinel.ErrInvalidState
}

// IsMissingField reports whether err carries a MissingFieldError.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}

// IsInvalidTransition reports whether err carries an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}

// IsDuplicateID reports whether err is an identifier collision on insert.
func IsDuplicateID(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyUsed)
}

// IsNotFound reports whether err means the enrollment does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
