// Package errors provides typed CLI errors with actionable guidance and
// sysexits-style exit codes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes an error for exit-code mapping and display.
type ErrorType string

const (
	ErrorTypeReference       ErrorType = "Reference"
	ErrorTypeFormat          ErrorType = "Format"
	ErrorTypeStateTransition ErrorType = "StateTransition"
	ErrorTypeImportFailure   ErrorType = "ImportFailure"
	ErrorTypeFileSystem      ErrorType = "FileSystem"
	ErrorTypeValidation      ErrorType = "Validation"
	ErrorTypeNetwork         ErrorType = "Network"
)

// StateSetError is a user-facing error with a cause and suggested fixes.
type StateSetError struct {
	Type      ErrorType
	Message   string
	Cause     string
	Solutions []string
	Help      string
}

// Error implements the error interface.
func (e *StateSetError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)
	if e.Cause != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Cause)
	}

	if len(e.Solutions) > 0 {
		sb.WriteString("\n\nSolutions:\n")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("  - %s\n", solution))
		}
	}

	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("\nHelp: %s\n", e.Help))
	}

	return sb.String()
}

// New creates a new StateSetError of the given type.
func New(errType ErrorType, message string) *StateSetError {
	return &StateSetError{Type: errType, Message: message}
}

// Newf creates a new StateSetError with a formatted message.
func Newf(errType ErrorType, format string, args ...any) *StateSetError {
	return &StateSetError{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches cause detail.
func (e *StateSetError) WithCause(cause string) *StateSetError {
	e.Cause = cause
	return e
}

// WithSolutions appends suggested fixes.
func (e *StateSetError) WithSolutions(solutions ...string) *StateSetError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithHelp attaches a help command reference.
func (e *StateSetError) WithHelp(help string) *StateSetError {
	e.Help = help
	return e
}

// IsType reports whether err is a StateSetError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ssErr *StateSetError
	if errors.As(err, &ssErr) {
		return ssErr.Type == errType
	}
	return false
}

// GetExitCode returns the process exit code for an error.
func GetExitCode(err error) int {
	var ssErr *StateSetError
	if !errors.As(err, &ssErr) {
		return 1
	}

	switch ssErr.Type {
	case ErrorTypeReference:
		return 66 // EX_NOINPUT
	case ErrorTypeFormat:
		return 65 // EX_DATAERR
	case ErrorTypeFileSystem:
		return 66 // EX_NOINPUT
	case ErrorTypeNetwork:
		return 69 // EX_UNAVAILABLE
	case ErrorTypeValidation:
		return 64 // EX_USAGE
	default:
		return 1
	}
}
