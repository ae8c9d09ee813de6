package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across the engine. Validators and calculators return
// these as values; nothing in the domain layer panics on expected bad input.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidState         = "INVALID_STATE"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeStructuralValidation = "STRUCTURAL_VALIDATION"
	CodeRangeValidation      = "RANGE_VALIDATION"
	CodeCheckDigitMismatch   = "CHECK_DIGIT_MISMATCH"
	CodeConfiguration        = "CONFIGURATION_ERROR"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NewStructuralError creates a structural validation error (malformed
// identifier or format).
func NewStructuralError(message string) *DomainError {
	return NewDomainError(CodeStructuralValidation, message)
}

// NewRangeError creates a range validation error (value outside legal bounds).
func NewRangeError(message string) *DomainError {
	return NewDomainError(CodeRangeValidation, message)
}

// NewConfigurationError creates a configuration error (malformed rate table or
// rule set supplied by configuration). Raised at load time, never per
// calculation.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(CodeConfiguration, message)
}
