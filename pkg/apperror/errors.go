package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP code
type Kind string

const (
	KindValidation Kind = "validation"
	KindState      Kind = "state"
	KindNotFound   Kind = "not_found"
	KindTransient  Kind = "transient_storage"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindBadRequest Kind = "bad_request"
	KindInternal   Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindForbidden, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrTenantRequired = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Tenant context required"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError creates a validation error for a single field
func NewFieldValidationError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewStateError reports a lifecycle transition that is not valid from the current status
func NewStateError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindState,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewTransientStorageError wraps a storage failure that is safe to retry
func NewTransientStorageError(err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindTransient,
		Message: "Storage temporarily unavailable, please retry",
		Err:     err,
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsState reports whether err is a StateError
func IsState(err error) bool { return isKind(err, KindState) }

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsTransient reports whether err is a TransientStorageError
func IsTransient(err error) bool { return isKind(err, KindTransient) }

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
