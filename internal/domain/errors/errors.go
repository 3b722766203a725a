// Package errors defines the application error taxonomy. Validation and
// domain errors are always recovered locally by the use case that raised
// them; persistence errors are retried by the autosave engine; decryption
// and permission errors drive the unlock and connection flows.
package errors

import (
	"net/http"

	"casevault/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Is matches any BaseError with the same error code, so copies produced
// by WithDetails still satisfy errors.Is against their sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.errorCode == e.errorCode
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation errors: input violates entity invariants. Local, never
	// persisted, never retried.
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// Domain errors: business-rule violations. The optimistic state has
	// already been rolled back when the caller sees one of these.
	ErrCaseNotFound = NewBaseError(
		http.StatusNotFound,
		"CASE_NOT_FOUND",
		"Case not found",
		"",
	)

	ErrPersonNotFound = NewBaseError(
		http.StatusNotFound,
		"PERSON_NOT_FOUND",
		"Person not found",
		"",
	)

	ErrFinancialItemNotFound = NewBaseError(
		http.StatusNotFound,
		"FINANCIAL_ITEM_NOT_FOUND",
		"Financial item not found",
		"",
	)

	ErrNoteNotFound = NewBaseError(
		http.StatusNotFound,
		"NOTE_NOT_FOUND",
		"Note not found",
		"",
	)

	ErrAlertNotFound = NewBaseError(
		http.StatusNotFound,
		"ALERT_NOT_FOUND",
		"Alert not found",
		"",
	)

	ErrDuplicateMCN = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_MCN",
		"A case with this MCN already exists",
		"",
	)

	ErrIllegalStatusTransition = NewBaseError(
		http.StatusConflict,
		"ILLEGAL_STATUS_TRANSITION",
		"The requested case status transition is not allowed",
		"",
	)

	// Decryption errors: the two kinds must never be conflated. WrongKey
	// means "incorrect password"; MalformedEnvelope means the file itself
	// is damaged.
	ErrWrongKey = NewBaseError(
		http.StatusUnauthorized,
		"WRONG_KEY",
		"Incorrect password for this vault",
		"",
	)

	ErrMalformedEnvelope = NewBaseError(
		http.StatusUnprocessableEntity,
		"MALFORMED_ENVELOPE",
		"The vault file is damaged and cannot be read",
		"",
	)

	// ErrInvalidDocument means decryption succeeded (or the file was
	// plaintext) but the document violates the schema.
	ErrInvalidDocument = NewBaseError(
		http.StatusUnprocessableEntity,
		"INVALID_DOCUMENT",
		"The vault document failed structural validation",
		"",
	)

	// Legacy format: the file predates the flat document layout. Surfaced
	// as a migration prompt, never as corruption.
	ErrLegacyFormat = NewBaseError(
		http.StatusUnprocessableEntity,
		"LEGACY_FORMAT",
		"The vault file uses a legacy format and must be migrated",
		"",
	)

	// Permission errors drive the connection lifecycle back to waiting.
	ErrPermissionDenied = NewBaseError(
		http.StatusForbidden,
		"PERMISSION_DENIED",
		"Access to the vault directory was denied",
		"",
	)

	ErrNoDirectory = NewBaseError(
		http.StatusConflict,
		"NO_DIRECTORY",
		"No vault directory is connected",
		"",
	)

	ErrVaultLocked = NewBaseError(
		http.StatusUnauthorized,
		"VAULT_LOCKED",
		"The vault is locked; unlock it first",
		"",
	)

	ErrSaveFailed = NewBaseError(
		http.StatusInternalServerError,
		"SAVE_FAILED",
		"Saving the vault failed",
		"",
	)

	ErrAborted = NewBaseError(
		http.StatusConflict,
		"ABORTED",
		"The operation was aborted",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal error",
		"",
	)
)

// PersistenceError represents a vault I/O failure, implementing the
// AppError interface while preserving the underlying cause for errors.Is.
type PersistenceError struct {
	err     error
	details string
}

// NewPersistenceError creates a persistence-related error
func NewPersistenceError(err error, details string) AppError {
	return &PersistenceError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return errors.Wrap(e.err, "vault persistence failed").Error()
}

// Unwrap exposes the underlying cause
func (e *PersistenceError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *PersistenceError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *PersistenceError) ErrorCode() string {
	return "PERSISTENCE_FAILED"
}

// Message returns the user-friendly error message
func (e *PersistenceError) Message() string {
	return "Saving to the vault failed"
}

// Details returns detailed error information
func (e *PersistenceError) Details() string {
	return e.details
}
