package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lumohq/lumo-api/internal/service/auth"
	"github.com/lumohq/lumo-api/internal/service/revision"
	"github.com/lumohq/lumo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTopicMasteryNotFound),
		errors.Is(err, store.ErrScheduleEntryNotFound),
		errors.Is(err, revision.ErrEntryNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrOpenEntryExists),
		errors.Is(err, store.ErrEntryCompleted),
		errors.Is(err, revision.ErrEntryCompleted):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, revision.ErrInvalidCounts),
		errors.Is(err, revision.ErrInvalidBloomLevel),
		errors.Is(err, revision.ErrInvalidQuality):
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
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTopicMasteryNotFound):
		return "Topic mastery record not found"

	case errors.Is(err, store.ErrScheduleEntryNotFound),
		errors.Is(err, revision.ErrEntryNotFound):
		return "Revision schedule entry not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrOpenEntryExists):
		return "An open revision entry already exists for this topic"

	case errors.Is(err, store.ErrEntryCompleted),
		errors.Is(err, revision.ErrEntryCompleted):
		return "Revision entry has already been completed"

	// Bad request errors
	case errors.Is(err, revision.ErrInvalidCounts):
		return "Invalid assessment counts"

	case errors.Is(err, revision.ErrInvalidBloomLevel):
		return "Invalid bloom level"

	case errors.Is(err, revision.ErrInvalidQuality):
		return "Recall quality must be between 0 and 5"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation
		// for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
