package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingConfiguration indicates that a required configuration key is absent.
	ErrMissingConfiguration = errors.New("missing configuration key")

	// ErrTransport indicates a network or HTTP-level failure talking to a provider.
	ErrTransport = errors.New("transport error")

	// ErrParse indicates a malformed or unexpected provider response.
	ErrParse = errors.New("parse error")

	// ErrUnknownProvider indicates that no provider is registered under a name.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrCapabilityUnsupported indicates that a provider does not offer an operation.
	ErrCapabilityUnsupported = errors.New("capability not supported")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ConfigurationError reports a configuration key that an operation needs but
// the loaded configuration does not provide.
type ConfigurationError struct {
	Key string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration key: %s", e.Key)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ConfigurationError) Unwrap() error {
	return ErrMissingConfiguration
}

// TransportError provides details about a failed provider round trip.
// StatusCode is zero when no HTTP response was received. The URL is kept
// out of the message since it may carry credentials.
type TransportError struct {
	Provider   string
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s transport error: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s transport error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Unwrap returns the underlying cause error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError provides details about a response that could not be interpreted.
type ParseError struct {
	Provider string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s parse error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s parse error: %s", e.Provider, e.Message)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ProviderError attaches the provider, operation and query arguments to any
// failure raised while serving a provider call.
type ProviderError struct {
	Provider  string
	Operation string
	Query     string
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s(%q): %v", e.Provider, e.Operation, e.Query, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(key string) *ConfigurationError {
	return &ConfigurationError{Key: key}
}

// NewTransportError creates a new TransportError.
func NewTransportError(provider, url string, statusCode int, message string, cause error) *TransportError {
	return &TransportError{
		Provider:   provider,
		URL:        url,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewParseError creates a new ParseError.
func NewParseError(provider, message string, cause error) *ParseError {
	return &ParseError{
		Provider: provider,
		Message:  message,
		Cause:    cause,
	}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, operation, query string, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Operation: operation,
		Query:     query,
		Err:       err,
	}
}
