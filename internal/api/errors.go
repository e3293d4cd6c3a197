package api

import (
	"errors"
	"net/http"

	"github.com/anketahub/anketa-api/internal/api/shared"
	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/service"
	"github.com/anketahub/anketa-api/internal/service/auth"
	"github.com/anketahub/anketa-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, auth.ErrNotApproved):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidAgeRange),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, auth.ErrCodeMismatch),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, service.ErrNoWorkerProfile):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this listing"

	case errors.Is(err, auth.ErrNotApproved):
		return "Recovery has not been approved"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrWorkerNotFound):
		return "Worker profile not found"

	case errors.Is(err, store.ErrListingNotFound):
		return "Listing not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"

	case errors.Is(err, domain.ErrInvalidUsername):
		return "Invalid username format"

	case errors.Is(err, domain.ErrInvalidPassword):
		return "Invalid password format"

	case errors.Is(err, domain.ErrInvalidAgeRange):
		return "Invalid age range"

	case errors.Is(err, auth.ErrCodeMismatch):
		return "Confirmation code does not match"

	case errors.Is(err, auth.ErrSessionExpired):
		return "Session has expired"

	case errors.Is(err, service.ErrNoWorkerProfile):
		return "No worker profile"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message and writes
// the response, logging the underlying error. An empty fallbackMessage keeps
// the mapped safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
