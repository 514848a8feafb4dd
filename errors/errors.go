// Package errors provides the classified error taxonomy used by the envelope codec.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorRegistration represents a programmer error detected while building a codec.
	// These are fatal to the registration call and are never retried.
	ErrorRegistration ErrorClass = iota
	// ErrorParse represents malformed or unresolvable wire data
	ErrorParse
	// ErrorValidation represents a message whose required fields are missing
	ErrorValidation
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorRegistration:
		return "registration"
	case ErrorParse:
		return "parse"
	case ErrorValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Registration errors
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotMessageType    = errors.New("not a message type")
	ErrTypeConflict      = errors.New("message type already registered")
	ErrNoZeroValue       = errors.New("no usable zero value")
	ErrRegistryFrozen    = errors.New("registry is frozen")
	ErrReservedField     = errors.New("reserved field")
	ErrUnknownField      = errors.New("unknown field")

	// Parse errors
	ErrMissingType  = errors.New("missing type property")
	ErrUnknownType  = errors.New("unknown type")
	ErrEmptyBatch   = errors.New("no message to parse")
	ErrMalformed    = errors.New("malformed message")
	ErrTooLarge     = errors.New("message too large")
	ErrUnknownValue = errors.New("unknown enum value")

	// Validation errors
	ErrMissingField = errors.New("required field missing")
	ErrNilMessage   = errors.New("nil message")
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

// IsRegistration reports whether err is a registration error
func IsRegistration(err error) bool {
	return hasClass(err, ErrorRegistration,
		ErrInvalidIdentifier, ErrNotMessageType, ErrTypeConflict,
		ErrNoZeroValue, ErrRegistryFrozen, ErrReservedField, ErrUnknownField)
}

// IsParse reports whether err is a parse error
func IsParse(err error) bool {
	return hasClass(err, ErrorParse,
		ErrMissingType, ErrUnknownType, ErrEmptyBatch,
		ErrMalformed, ErrTooLarge, ErrUnknownValue)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	return hasClass(err, ErrorValidation, ErrMissingField, ErrNilMessage)
}

func hasClass(err error, class ErrorClass, sentinels ...error) bool {
	if err == nil {
		return false
	}

	// The outermost classification wins
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == class
	}

	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Classify returns the error class for an error.
// The second return value is false when the error carries no known class.
func Classify(err error) (ErrorClass, bool) {
	switch {
	case err == nil:
		return 0, false
	case IsRegistration(err):
		return ErrorRegistration, true
	case IsParse(err):
		return ErrorParse, true
	case IsValidation(err):
		return ErrorValidation, true
	default:
		return 0, false
	}
}

// newClassified creates a new classified error
// This is an internal helper - use WrapRegistration(), WrapParse(), or WrapValidation() instead.
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

// WrapRegistration wraps an error as a registration error with context
func WrapRegistration(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorRegistration, wrappedErr, component, method, wrappedErr.Error())
}

// WrapParse wraps an error as a parse error with context
func WrapParse(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorParse, wrappedErr, component, method, wrappedErr.Error())
}

// WrapValidation wraps an error as a validation error with context
func WrapValidation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorValidation, wrappedErr, component, method, wrappedErr.Error())
}

// MessageFailure records why a single message of a batch failed validation.
type MessageFailure struct {
	Index int
	Type  string
	Err   error
}

// ValidationErrors aggregates the validation failures of a whole batch.
type ValidationErrors struct {
	Failures []MessageFailure
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve.Failures))
	for _, f := range ve.Failures {
		if f.Type != "" {
			parts = append(parts, fmt.Sprintf("message %d (%s): %v", f.Index, f.Type, f.Err))
		} else {
			parts = append(parts, fmt.Sprintf("message %d: %v", f.Index, f.Err))
		}
	}
	return fmt.Sprintf("%d invalid message(s): %s", len(ve.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes every failure cause to errors.Is and errors.As.
func (ve *ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(ve.Failures))
	for _, f := range ve.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Add appends a failure for the message at index.
func (ve *ValidationErrors) Add(index int, msgType string, err error) {
	ve.Failures = append(ve.Failures, MessageFailure{Index: index, Type: msgType, Err: err})
}

// ErrOrNil returns nil when no failure has been recorded.
func (ve *ValidationErrors) ErrOrNil() error {
	if ve == nil || len(ve.Failures) == 0 {
		return nil
	}
	return ve
}
