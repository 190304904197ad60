package domain

import "errors"

var (
	// ErrValidation marks records or requests that fail schema validation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)
