package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain errors keep their
// own codes; these cover failures that never reach a service.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request field validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain codes
// pass through to clients unchanged, so the map carries both the HTTP-layer
// codes and every domain code the services can surface.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Lookup and uniqueness
	"NOT_FOUND":           http.StatusNotFound,
	"ALREADY_EXISTS":      http.StatusConflict,
	"DUPLICATE_CONTAINER": http.StatusConflict,
	"DUPLICATE_BOOKING":   http.StatusConflict,

	// Concurrency
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,

	// Malformed input -> 400 Bad Request
	"INVALID_INPUT":         http.StatusBadRequest,
	"STRUCTURAL_VALIDATION": http.StatusBadRequest,
	"RANGE_VALIDATION":      http.StatusBadRequest,
	"CHECK_DIGIT_MISMATCH":  http.StatusBadRequest,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"EMPTY_INVOICE":     http.StatusUnprocessableEntity,
	"ZERO_TOTAL":        http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE":   http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH": http.StatusUnprocessableEntity,

	// Server-side misconfiguration
	"CONFIGURATION_ERROR": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Domain
// codes of the INVALID_<FIELD> family all mean a malformed request field,
// so unlisted ones fall to 400 rather than 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
