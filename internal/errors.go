package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of cache or upstream error
type ErrorType int

const (
	// ErrorTypeConnection indicates a Redis connection error
	ErrorTypeConnection ErrorType = iota + 1
	// ErrorTypeKeyInvalid indicates an invalid cache key
	ErrorTypeKeyInvalid
	// ErrorTypeNotFound indicates a cache miss or key not found
	ErrorTypeNotFound
	// ErrorTypeSerialization indicates JSON marshaling/unmarshaling error
	ErrorTypeSerialization
	// ErrorTypeTimeout indicates a timeout during a store or upstream operation
	ErrorTypeTimeout
	// ErrorTypeCapacity indicates cache capacity or memory issues
	ErrorTypeCapacity
	// ErrorTypeValidation indicates input validation failure
	ErrorTypeValidation
	// ErrorTypeUpstream indicates the metadata or cover art provider was unavailable
	ErrorTypeUpstream
	// ErrorTypeMalformedResponse indicates a provider response that could not be decoded
	ErrorTypeMalformedResponse
	// ErrorTypeRetryExhausted indicates all retry attempts failed
	ErrorTypeRetryExhausted
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeConnection:
		return "CONNECTION"
	case ErrorTypeKeyInvalid:
		return "KEY_INVALID"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeSerialization:
		return "SERIALIZATION"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeCapacity:
		return "CAPACITY"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeUpstream:
		return "UPSTREAM"
	case ErrorTypeMalformedResponse:
		return "MALFORMED_RESPONSE"
	case ErrorTypeRetryExhausted:
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// IsRetryable reports whether a caller may reasonably retry an operation that
// failed with this error type.
func (e ErrorType) IsRetryable() bool {
	switch e {
	case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeCapacity, ErrorTypeUpstream:
		return true
	default:
		return false
	}
}

// CacheError represents a cache-specific error with context
type CacheError struct {
	Type    ErrorType
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CacheError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Key != "" {
		return fmt.Sprintf("cache error [%s] for key '%s': %s", e.Type.String(), e.Key, msg)
	}
	return fmt.Sprintf("cache error [%s]: %s", e.Type.String(), msg)
}

// Unwrap returns the underlying cause error
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error type
func (e *CacheError) Is(target error) bool {
	if t, ok := target.(*CacheError); ok {
		return e.Type == t.Type
	}
	return false
}

// NewCacheError creates a new CacheError
func NewCacheError(errType ErrorType, key, message string, cause error) *CacheError {
	return &CacheError{
		Type:    errType,
		Key:     key,
		Message: message,
		Cause:   cause,
	}
}

// NewConnectionError creates a connection-specific cache error
func NewConnectionError(message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeConnection, "", message, cause)
}

// NewKeyInvalidError creates a key validation error
func NewKeyInvalidError(key, message string) *CacheError {
	return NewCacheError(ErrorTypeKeyInvalid, key, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(key string) *CacheError {
	return NewCacheError(ErrorTypeNotFound, key, "key not found in cache", nil)
}

// NewSerializationError creates a serialization error
func NewSerializationError(key, message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeSerialization, key, message, cause)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(key, message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeTimeout, key, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeValidation, "", message, cause)
}

// NewUpstreamError creates an error for an unavailable or failing provider.
// The key carries the request path so logs identify the failing endpoint.
func NewUpstreamError(path, message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeUpstream, path, message, cause)
}

// NewMalformedResponseError creates an error for an undecodable provider response
func NewMalformedResponseError(path, message string, cause error) *CacheError {
	return NewCacheError(ErrorTypeMalformedResponse, path, message, cause)
}

// NewRetryExhaustedError creates an error for an operation that failed on every attempt
func NewRetryExhaustedError(operation string, attempts int, cause error) *CacheError {
	return NewCacheError(ErrorTypeRetryExhausted, "", fmt.Sprintf("operation '%s' failed after %d attempts", operation, attempts), cause)
}

func hasType(err error, errType ErrorType) bool {
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return cacheErr.Type == errType
	}
	return false
}

// IsConnectionError checks if the error is a connection error
func IsConnectionError(err error) bool {
	return hasType(err, ErrorTypeConnection)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsTimeoutError checks if the error is a timeout error
func IsTimeoutError(err error) bool {
	return hasType(err, ErrorTypeTimeout)
}

// IsUpstreamError checks if the error came from an unavailable provider
func IsUpstreamError(err error) bool {
	return hasType(err, ErrorTypeUpstream)
}

// IsMalformedResponseError checks if the error came from an undecodable provider response
func IsMalformedResponseError(err error) bool {
	return hasType(err, ErrorTypeMalformedResponse)
}

// IsRetryExhaustedError checks if the error reports exhausted retries
func IsRetryExhaustedError(err error) bool {
	return hasType(err, ErrorTypeRetryExhausted)
}

// ClassifyStoreError wraps a raw Redis error as a timeout or connection
// CacheError. Errors that are neither are wrapped with the given message.
func ClassifyStoreError(key, message string, err error) error {
	if err == nil {
		return nil
	}
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) && cacheErr.Type != ErrorTypeRetryExhausted {
		return err
	}
	if isTimeout(err) {
		return NewTimeoutError(key, message, err)
	}
	if isConnection(err) || IsRetryExhaustedError(err) {
		return NewCacheError(ErrorTypeConnection, key, message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isConnection(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range connectionErrorFragments {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var connectionErrorFragments = []string{
	"connection refused",
	"connection reset",
	"network is unreachable",
	"no route to host",
	"broken pipe",
	"use of closed network connection",
	"client is closed",
}
