// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is usually wrapped with a more specific error.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyDescription is returned when a task is created without a description.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrInvalidID is returned when a task ID is not a positive integer.
	ErrInvalidID = errors.New("invalid task ID")
)
