// Package errors provides structured error handling for ProcFlow.
// Errors carry codes for programmatic handling plus a context map for
// user-facing diagnostics.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors (1xx)
	CodeFileNotFound     Code = "E101"
	CodeFilePermission   Code = "E102"
	CodeInvalidFormat    Code = "E103"
	CodeMissingColumn    Code = "E104"
	CodeInvalidTimestamp Code = "E105"

	// Processing errors (2xx)
	CodeParseFailed     Code = "E201"
	CodeBuildFailed     Code = "E202"
	CodeDiscoveryFailed Code = "E203"

	// Output errors (3xx)
	CodeWriteFailed  Code = "E301"
	CodeExportFailed Code = "E302"

	// System errors (4xx)
	CodeContextCanceled Code = "E401"

	// DuckDB errors (5xx)
	CodeDuckDBInit  Code = "E501"
	CodeDuckDBQuery Code = "E502"

	// Unknown
	CodeUnknown Code = "E999"
)

// ProcFlowError is the base error type for all ProcFlow errors.
type ProcFlowError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *ProcFlowError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ProcFlowError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error.
func (e *ProcFlowError) Is(target error) bool {
	if t, ok := target.(*ProcFlowError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *ProcFlowError) WithContext(key string, value interface{}) *ProcFlowError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new ProcFlowError.
func New(code Code, message string) *ProcFlowError {
	return &ProcFlowError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *ProcFlowError {
	if err == nil {
		return nil
	}

	return &ProcFlowError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *ProcFlowError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *ProcFlowError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// FileNotFound creates a file not found error.
func FileNotFound(path string) *ProcFlowError {
	return New(CodeFileNotFound, "file not found").WithContext("path", path)
}

// MissingColumn creates a missing column error.
func MissingColumn(column string, available []string) *ProcFlowError {
	return New(CodeMissingColumn, "required column not found").
		WithContext("column", column).
		WithContext("available", available)
}

// InvalidTimestamp creates a timestamp parsing error.
func InvalidTimestamp(value string, row int) *ProcFlowError {
	return New(CodeInvalidTimestamp, "failed to parse timestamp").
		WithContext("value", value).
		WithContext("row", row)
}

// ContextCanceled creates a cancellation error.
func ContextCanceled(operation string) *ProcFlowError {
	return New(CodeContextCanceled, "operation canceled").
		WithContext("operation", operation)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var pfErr *ProcFlowError
	if errors.As(err, &pfErr) {
		return pfErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var pfErr *ProcFlowError
	if errors.As(err, &pfErr) {
		return pfErr.Code
	}
	return CodeUnknown
}
