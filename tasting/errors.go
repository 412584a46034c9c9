// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tasting

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("tasting not found")
	ErrInvalidCredential = errors.New("invalid organizer credential")
	ErrFrozen            = errors.New("tasting is completed")
	ErrValidation        = errors.New("validation failed")
	ErrUnavailable       = errors.New("temporarily unavailable")

	// ErrJoinCodeTaken is returned by a Repository when a new tasting's
	// join code collides with an existing one.
	ErrJoinCodeTaken = errors.New("join code already in use")
)

// ValidationError describes a rejected input. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// transient turns an exceeded deadline into ErrUnavailable so callers can
// tell a slow dependency from a definitive answer.
func transient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
