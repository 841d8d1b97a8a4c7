// Package service implements the rating lifecycle, account and catalog
// operations on top of the repositories and the authorization policy.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agrirate/agrirate/internal/policy"
	"github.com/agrirate/agrirate/internal/repository"
)

var (
	// ErrUnauthenticated means the caller carries no valid identity.
	ErrUnauthenticated = policy.ErrUnauthenticated
	// ErrForbidden means the caller is known but not allowed.
	ErrForbidden = policy.ErrForbidden
	// ErrNotFound means a referenced product, rating or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the write collided with existing data.
	ErrConflict = errors.New("conflict")

	errSubmitContention = errors.New("rating write contention")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is rejected before reaching the store.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// mapRepoError translates repository sentinels into service errors.
func mapRepoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, repository.ErrValidation):
		return &ValidationError{Fields: []FieldError{{Field: "value", Message: err.Error()}}}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
