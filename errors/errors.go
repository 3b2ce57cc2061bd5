package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	GeocodeError    ErrorType = "GEOCODE_ERROR"
	ProviderError   ErrorType = "PROVIDER_ERROR"
	GenerationError ErrorType = "GENERATION_ERROR"
	SelectionError  ErrorType = "SELECTION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND"
	AuthError       ErrorType = "AUTHENTICATION_ERROR"
	RateLimitError  ErrorType = "RATE_LIMITED"
	ServerError     ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper constructors for the planning pipeline's error taxonomy.

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DestinationGeocodeFailed is fatal to the whole plan: without destination
// coordinates no provider search can be issued.
func DestinationGeocodeFailed(place string, err error) *AppError {
	return &AppError{
		Type:       GeocodeError,
		Message:    "Could not locate destination",
		Detail:     fmt.Sprintf("place: %s", place),
		HTTPStatus: http.StatusUnprocessableEntity,
		Raw:        err,
	}
}

// ProviderFailed marks an isolated provider failure. It is never surfaced to
// the caller as a request failure; the pipeline degrades to an empty result.
func ProviderFailed(provider string, err error) *AppError {
	return &AppError{
		Type:       ProviderError,
		Message:    fmt.Sprintf("%s provider failed", provider),
		Detail:     err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func GenerationFailed(err error) *AppError {
	return &AppError{
		Type:       GenerationError,
		Message:    "Itinerary generation failed",
		Detail:     err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func SelectionMissing(field string) *AppError {
	return &AppError{
		Type:       SelectionError,
		Message:    "Required selection missing",
		Detail:     fmt.Sprintf("field: %s", field),
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, SelectionError:
		return http.StatusBadRequest
	case GeocodeError:
		return http.StatusUnprocessableEntity
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case RateLimitError:
		return http.StatusTooManyRequests
	case ProviderError, GenerationError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
