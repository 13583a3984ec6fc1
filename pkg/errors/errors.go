// Package errors provides structured error handling for astropipe
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeIncompatibleUnits represents arithmetic or conversion between
	// values of different physical dimensions
	ErrorTypeIncompatibleUnits ErrorType = "incompatible_units"
	// ErrorTypeFractionalDimension represents a root that would produce a
	// non-representable fractional dimension exponent
	ErrorTypeFractionalDimension ErrorType = "fractional_dimension"
	// ErrorTypeColumnNotFound represents access to an absent table column
	ErrorTypeColumnNotFound ErrorType = "column_not_found"
	// ErrorTypeDuplicateColumn represents adding a column under a name that
	// is already taken
	ErrorTypeDuplicateColumn ErrorType = "duplicate_column"
	// ErrorTypeLengthMismatch represents a column or mask whose length does
	// not match the table row count
	ErrorTypeLengthMismatch ErrorType = "length_mismatch"
	// ErrorTypeTypeMismatch represents an operation applied to a column of
	// the wrong semantic type
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeConnection represents transient network errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeCancelled represents a fetch aborted by its context
	ErrorTypeCancelled ErrorType = "cancelled"
	// ErrorTypeSchema represents remote schema drift, such as an expected
	// column missing from a catalog response
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeParse represents a malformed catalog response
	ErrorTypeParse ErrorType = "parse"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRetryable returns true if the error is retryable. Only transient
// connection failures qualify; schema, parse, and cancellation errors
// indicate contract breakage or caller intent and must not be retried.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == ErrorTypeConnection
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
