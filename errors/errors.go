// Package errors provides standardized error handling patterns for waverobot
// components. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across the system.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ClassArgument represents errors caused by a structurally invalid caller
	// value. Always local, never retried, surfaced immediately.
	ClassArgument ErrorClass = iota
	// ClassState represents operations attempted before required setup, or
	// violations of exactly-once constraints. Local, never retried.
	ClassState
	// ClassAuth represents signature or body-hash validation failures, or
	// missing credentials where they are required. Request-scoped fatal.
	ClassAuth
	// ClassTransport represents network failures, non-success HTTP statuses,
	// and malformed response bodies.
	ClassTransport
	// ClassRemote represents a per-operation failure reported by the server
	// in an otherwise successful exchange.
	ClassRemote
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ClassArgument:
		return "argument"
	case ClassState:
		return "state"
	case ClassAuth:
		return "auth"
	case ClassTransport:
		return "transport"
	case ClassRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Setup and lifecycle errors
	ErrNoCredentials   = errors.New("no consumer credentials registered for endpoint")
	ErrMissingRPCURL   = errors.New("RPC server URL is not set")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingConfig   = errors.New("missing required configuration")
	ErrRobotAddressSet = errors.New("robot address has already been set")
	ErrRegistryFrozen  = errors.New("capability registry is frozen")

	// Authentication errors
	ErrBodyHashMismatch   = errors.New("body hash does not match")
	ErrSignatureInvalid   = errors.New("request signature is invalid")
	ErrUnsignedNotAllowed = errors.New("unsigned requests are not allowed")
	ErrTimestampStale     = errors.New("request timestamp outside allowed window")

	// Document mirror errors
	ErrBlipNotFound    = errors.New("blip not found in wavelet")
	ErrBlipHasChildren = errors.New("blip still has child blips")
	ErrNoRootBlip      = errors.New("wavelet has no root blip")

	// Transport errors
	ErrResponseMalformed = errors.New("malformed response body")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// is reports whether err carries the given class, either directly via a
// ClassifiedError or through one of the standard variables.
func is(err error, class ErrorClass, known ...error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == class
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// IsArgument checks if an error was caused by a structurally invalid value
func IsArgument(err error) bool {
	return is(err, ClassArgument)
}

// IsState checks if an error was caused by missing setup or an
// exactly-once violation
func IsState(err error) bool {
	return is(err, ClassState, ErrNoCredentials, ErrMissingRPCURL,
		ErrRobotAddressSet, ErrBlipHasChildren, ErrMissingConfig,
		ErrRegistryFrozen)
}

// IsAuth checks if an error is an authentication failure
func IsAuth(err error) bool {
	return is(err, ClassAuth, ErrBodyHashMismatch, ErrSignatureInvalid,
		ErrUnsignedNotAllowed, ErrTimestampStale)
}

// IsTransport checks if an error is a transport failure
func IsTransport(err error) bool {
	return is(err, ClassTransport, ErrResponseMalformed)
}

// IsRemote checks if an error is a server-reported per-operation failure
func IsRemote(err error) bool {
	return is(err, ClassRemote)
}

// Classify returns the error class for an error. Unclassified errors
// default to transport, the only class a caller may reasonably retry.
func Classify(err error) ErrorClass {
	switch {
	case IsArgument(err):
		return ClassArgument
	case IsState(err):
		return ClassState
	case IsAuth(err):
		return ClassAuth
	case IsRemote(err):
		return ClassRemote
	default:
		return ClassTransport
	}
}

// newClassified creates a new classified error.
// This is an internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// wrapClass wraps an error with the given class and context
func wrapClass(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(class, wrappedErr, component, method, wrappedErr.Error())
}

// WrapArgument wraps an error as an argument error with context
func WrapArgument(err error, component, method, action string) error {
	return wrapClass(ClassArgument, err, component, method, action)
}

// WrapState wraps an error as a state error with context
func WrapState(err error, component, method, action string) error {
	return wrapClass(ClassState, err, component, method, action)
}

// WrapAuth wraps an error as an auth error with context
func WrapAuth(err error, component, method, action string) error {
	return wrapClass(ClassAuth, err, component, method, action)
}

// WrapTransport wraps an error as a transport error with context
func WrapTransport(err error, component, method, action string) error {
	return wrapClass(ClassTransport, err, component, method, action)
}

// WrapRemote wraps an error as a remote-reported error with context
func WrapRemote(err error, component, method, action string) error {
	return wrapClass(ClassRemote, err, component, method, action)
}
