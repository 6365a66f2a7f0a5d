// Package errs defines the failure taxonomy shared by stores, services and
// the HTTP layer. Callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrExpired          = errors.New("verification code expired")
	ErrMismatch         = errors.New("verification code mismatch")
	ErrDelivery         = errors.New("verification code delivery failed")
	ErrStore            = errors.New("store failure")
	ErrInvalidInvite    = errors.New("invite code invalid or already used")
	ErrAccountExists    = errors.New("account already exists for phone")
	ErrAlreadySubmitted = errors.New("order already submitted")
	ErrForbidden        = errors.New("forbidden")
)

// Validation wraps ErrValidation with a human readable reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// Store wraps a backend error with ErrStore unless it already carries a
// domain error.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// IsDomain reports whether err belongs to the taxonomy above.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrExpired, ErrMismatch, ErrDelivery,
		ErrStore, ErrInvalidInvite, ErrAccountExists, ErrAlreadySubmitted, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
