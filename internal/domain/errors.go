// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidUsername is returned when a username doesn't meet requirements.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidStatus is returned when a listing status is not valid.
	ErrInvalidStatus = errors.New("invalid listing status")

	// ErrInvalidAgeRange is returned when a listing's advertised age bounds
	// fall outside the allowed 18..100 window.
	ErrInvalidAgeRange = errors.New("invalid age range")

	// ErrNegativeAmount is returned when a balance operation receives a
	// negative amount.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
