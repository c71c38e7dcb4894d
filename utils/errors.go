package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthError covers both missing sessions (401) and ownership mismatches (403).
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func Unauthorized(message string) error {
	return &AuthError{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) error {
	return &AuthError{Status: http.StatusForbidden, Message: message}
}

// VendorError carries a third-party API failure with the vendor's own code.
type VendorError struct {
	Vendor  string
	Code    int
	Status  int
	Message string
}

func (e *VendorError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Vendor, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Vendor, e.Message)
}

// HTTPStatus maps the vendor's status onto ours: caller-attributable failures
// become 400, everything else 500.
func (e *VendorError) HTTPStatus() int {
	if e.Status >= 400 && e.Status < 500 {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ConfigError signals a missing secret or vendor setting.
type ConfigError struct {
	Component string
}

func (e *ConfigError) Error() string {
	return e.Component + " is not configured"
}

func NotConfigured(component string) error {
	return &ConfigError{Component: component}
}

// StatusFor classifies an error into an HTTP status code.
func StatusFor(err error) int {
	var (
		validation *ValidationError
		auth       *AuthError
		vendor     *VendorError
		cfg        *ConfigError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return auth.Status
	case errors.As(err, &vendor):
		return vendor.HTTPStatus()
	case errors.As(err, &cfg):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
