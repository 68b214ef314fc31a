package service

import (
	"errors"
	"strings"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrValidation         = errors.New("validation failed")
	ErrProductNotFound    = errors.New("product not found")
	ErrItemNotFound       = errors.New("item not in cart")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Issues []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Field + ": " + is.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// First returns the message of the first issue.
func (e *ValidationError) First() string {
	if len(e.Issues) == 0 {
		return "Validation failed"
	}
	return e.Issues[0].Message
}

func (e *ValidationError) add(field, msg string) {
	e.Issues = append(e.Issues, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
