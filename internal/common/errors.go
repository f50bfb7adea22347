// Package common provides shared errors and utilities used across the
// application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry indicates a uniqueness constraint violation.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrStorageUnavailable indicates the record store could not acquire
	// or commit a transaction; the previous state is intact.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSystemCategory indicates an attempt to delete a seeded category.
	ErrSystemCategory = errors.New("system categories cannot be deleted")
)

// UserError represents an error whose message is fit to show directly to
// the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
