package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid caller input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMalformedPayload indicates a response body that could not be decoded
	ErrMalformedPayload = errors.New("malformed payload")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Section != "" && e.Field != "" {
		return fmt.Sprintf("configuration error in section '%s', field '%s': %s", e.Section, e.Field, e.Reason)
	} else if e.Section != "" {
		return fmt.Sprintf("configuration error in section '%s': %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfiguration
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{
		Section: section,
		Field:   field,
		Reason:  reason,
	}
}

// DecodeError describes a response body that a decoder rejected
type DecodeError struct {
	Endpoint string
	URL      string
	Reason   string
	Wrapped  error
}

func (e *DecodeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("decode %s response from '%s': %s: %v", e.Endpoint, e.URL, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("decode %s response from '%s': %s", e.Endpoint, e.URL, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrMalformedPayload
}

// NewDecodeError creates a new decode error
func NewDecodeError(endpoint, url, reason string, wrapped error) *DecodeError {
	return &DecodeError{
		Endpoint: endpoint,
		URL:      url,
		Reason:   reason,
		Wrapped:  wrapped,
	}
}

// CombineErrors combines multiple errors into a single error with formatted message.
// Every combined error stays reachable through errors.Is and errors.As.
func CombineErrors(errs []error) error {
	var kept []any
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0].(error)
	}

	verbs := strings.TrimSuffix(strings.Repeat("%w; ", len(kept)), "; ")
	return fmt.Errorf("multiple errors occurred: ["+verbs+"]", kept...)
}

// ErrorCollector helps collect multiple errors during teardown
type ErrorCollector struct {
	errors []error
}

// AddWithContext adds an error with additional context
func (ec *ErrorCollector) AddWithContext(err error, context string) {
	if err != nil {
		ec.errors = append(ec.errors, WrapError(err, context))
	}
}

// Error returns a combined error from all collected errors
func (ec *ErrorCollector) Error() error {
	return CombineErrors(ec.errors)
}
