package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrMissingFields is returned when a homework record is missing
	// one or more required fields.
	ErrMissingFields = errors.New("all fields are required")

	// ErrBadDate is returned when a date string cannot be parsed.
	ErrBadDate = errors.New("invalid date format, expected DD/MM/YYYY")

	// ErrDuplicateCode is returned when a homework code already exists
	// in the live collection.
	ErrDuplicateCode = errors.New("homework code already exists")

	// ErrNotFound is returned when no homework matches the given code.
	ErrNotFound = errors.New("homework not found")
)
