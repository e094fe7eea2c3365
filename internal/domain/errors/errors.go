package errors

import (
	"fmt"
	"net/http"
)

// AppError is a custom error type for application errors
type AppError struct {
	Code       string
	Message    string
	StatusCode int // Same rule as HTTP status codes
	Err        error
	Details    map[string]interface{}
}

// Error returns a string representation of the error
func (e AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is implements the errors.Is interface
func (e AppError) Is(target error) bool {
	if target, ok := target.(AppError); ok {
		return target.Code == e.Code
	}
	return false
}

// Unwrap returns the underlying error
func (e AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e AppError) WithDetail(key string, value interface{}) AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Sentinel values for errors.Is checks against the error taxonomy.
var (
	ErrUnauthenticated  = AppError{Code: "UNAUTHENTICATED"}
	ErrNotFound         = AppError{Code: "NOT_FOUND"}
	ErrNoActiveCompany  = AppError{Code: "NO_ACTIVE_COMPANY"}
	ErrTransportFailure = AppError{Code: "TRANSPORT_FAILURE"}
	ErrDuplicatePattern = AppError{Code: "DUPLICATE_PATTERN"}
)

// NewUnauthenticatedError creates a new unauthenticated error
func NewUnauthenticatedError(message string) AppError {
	return AppError{
		Code:       "UNAUTHENTICATED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) AppError {
	return AppError{
		Code:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewNoActiveCompanyError creates a new no-active-company error
func NewNoActiveCompanyError(message string) AppError {
	return AppError{
		Code:       "NO_ACTIVE_COMPANY",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewTransportError creates a new transport failure error
func NewTransportError(message string, err error) AppError {
	return AppError{
		Code:       "TRANSPORT_FAILURE",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// NewDuplicatePatternError creates a new duplicate pattern error
func NewDuplicatePatternError(message string) AppError {
	return AppError{
		Code:       "DUPLICATE_PATTERN",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) AppError {
	return AppError{
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) AppError {
	return AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) AppError {
	return AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
