// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptySource is returned when a generation request carries no
	// usable source content.
	ErrEmptySource = errors.New("source content cannot be empty")

	// ErrCardCountOutOfRange is returned when the requested number of
	// cards falls outside the configured bounds.
	ErrCardCountOutOfRange = errors.New("requested card count out of range")

	// ErrEmptyDeckTarget is returned when a deck generation request has
	// no target deck identifier.
	ErrEmptyDeckTarget = errors.New("deck target cannot be empty")

	// ErrEmptyCardRef is returned when a hint request has no card reference.
	ErrEmptyCardRef = errors.New("card reference cannot be empty")

	// ErrHintTextEmpty is returned when a hint has no text after trimming.
	ErrHintTextEmpty = errors.New("hint text cannot be empty")
)
