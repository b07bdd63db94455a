// Package errors provides unified error handling with structured error codes
// shared across the capture, input, output, and session layers.
package errors

import "fmt"

// Code classifies an error for callers that dispatch on failure kind.
type Code int

const (
	CodeUnknown Code = iota
	CodeInternal
	CodeInvalidConfig

	// Capture service failures.
	CodeInvalidMonitor
	CodeNoActiveWindow
	CodeInsufficientOverlap
	CodeEmptyCaptureArea

	// Platform service failures.
	CodeInputInjectionFailed
	CodeOutputWriteFailed

	// Session state machine violations.
	CodeAlreadyStarted
	CodeNotRunning
)

var codeNames = map[Code]string{
	CodeUnknown:              "UNKNOWN",
	CodeInternal:             "INTERNAL",
	CodeInvalidConfig:        "INVALID_CONFIG",
	CodeInvalidMonitor:       "INVALID_MONITOR",
	CodeNoActiveWindow:       "NO_ACTIVE_WINDOW",
	CodeInsufficientOverlap:  "INSUFFICIENT_OVERLAP",
	CodeEmptyCaptureArea:     "EMPTY_CAPTURE_AREA",
	CodeInputInjectionFailed: "INPUT_INJECTION_FAILED",
	CodeOutputWriteFailed:    "OUTPUT_WRITE_FAILED",
	CodeAlreadyStarted:       "ALREADY_STARTED",
	CodeNotRunning:           "NOT_RUNNING",
}

// String returns the canonical name of the code.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the error's code, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeUnknown
}
