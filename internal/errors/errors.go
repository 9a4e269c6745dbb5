// Package errors provides unified error handling across the snipline system.
//
// It standardizes error representation and categorization for the expansion
// core and both hosts (CLI, TUI): coded AppErrors with severity levels,
// constructors for the common cases, and one deliberately special class,
// host-context invalidation, which is recognized and suppressed at top-level
// handlers while every other error propagates.
package errors

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"

	// Network errors
	ErrCodeNetworkFailure ErrorCode = "NETWORK_FAILURE"

	// Capability errors (degraded, never fatal)
	ErrCodeClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
	ErrCodeDetectionFailure     ErrorCode = "DETECTION_FAILURE"

	// Host errors
	ErrCodeContextInvalidated ErrorCode = "CONTEXT_INVALIDATED"

	// Command errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeInvalidCommand  ErrorCode = "INVALID_COMMAND"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryStorage    ErrorCategory = "storage"
	CategoryNetwork    ErrorCategory = "network"
	CategoryCapability ErrorCategory = "capability"
	CategoryCommand    ErrorCategory = "command"
	CategoryHost       ErrorCategory = "host"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Severity  ErrorSeverity `json:"severity"`
	Category  ErrorCategory `json:"category"`
	Cause     error         `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return CategoryValidation, SeverityWarning
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return CategoryStorage, SeverityInfo
	case ErrCodeStorageFailure, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityError
	case ErrCodeNetworkFailure:
		return CategoryNetwork, SeverityError
	case ErrCodeClipboardUnavailable, ErrCodeDetectionFailure:
		return CategoryCapability, SeverityWarning
	case ErrCodeContextInvalidated:
		return CategoryHost, SeverityInfo
	case ErrCodeCommandNotFound:
		return CategoryCommand, SeverityInfo
	case ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError
	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical
	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// ContextInvalidatedError marks a failure caused by the hosting context being
// torn down mid-operation.
func ContextInvalidatedError(operation string) *AppError {
	return NewAppError(ErrCodeContextInvalidated, fmt.Sprintf("host context invalidated during %s", operation))
}

// IsContextInvalidated reports whether err belongs to the host-context
// invalidation class, either by code or by the host's own message text.
func IsContextInvalidated(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*AppError); ok && appErr.Code == ErrCodeContextInvalidated {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "context invalidated")
}

// Suppress returns nil for the host-context-invalidated class and the error
// unchanged for everything else. Top-level handlers call this so teardown
// races vanish silently while real bugs stay visible.
func Suppress(err error) error {
	if IsContextInvalidated(err) {
		return nil
	}
	return err
}

// Common error constructors for frequently used errors

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func NetworkError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeNetworkFailure, fmt.Sprintf("Network operation failed: %s", operation))
}

func ClipboardUnavailableError(err error) *AppError {
	return Wrap(err, ErrCodeClipboardUnavailable, "Clipboard unavailable")
}

func CommandNotFoundError(command string) *AppError {
	return NewAppError(ErrCodeCommandNotFound, fmt.Sprintf("Command '%s' not found", command))
}

// LogDegraded records a degraded-capability event to the error log file and
// stderr. Used when an external capability fails but the expansion continues
// on a fallback (storage miss, clipboard failure, detection throw).
func LogDegraded(appErr *AppError) {
	log.Printf("[%s] %s: %s", appErr.Severity, appErr.Code, appErr.Error())
	logToFile(appErr)
}

// logToFile appends errors to a file for debugging
func logToFile(appErr *AppError) {
	logDir := os.Getenv("SNIPLINE_DIR")
	if logDir == "" {
		logDir = os.ExpandEnv("$HOME/.snipline")
	}
	logDir = filepath.Join(logDir, "logs")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return // Fail silently if we can't create log directory
	}

	file, err := os.OpenFile(filepath.Join(logDir, "error.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer file.Close()

	entry := fmt.Sprintf("[%s] [%s] [%s] %s: %s",
		appErr.Timestamp.Format("2006-01-02 15:04:05"),
		appErr.Severity,
		appErr.Category,
		appErr.Code,
		appErr.Error())
	if appErr.Cause != nil {
		entry += fmt.Sprintf(" | Cause: %v", appErr.Cause)
	}
	entry += "\n"

	file.WriteString(entry)
}
