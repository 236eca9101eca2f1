package errors

import (
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Columns []string // offending columns, set for SCHEMA_ERROR
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Columns: appErr.Columns,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// AsAppError unwraps err to an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// Predefined error codes
const (
	CodeSchemaError   = "SCHEMA_ERROR"
	CodeNoDataset     = "NO_DATASET"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
)

// SchemaError reports an upload whose columns are missing or malformed.
// Validation is all-or-nothing, so every offending column is listed.
func SchemaError(columns []string) *AppError {
	return &AppError{
		Code:    CodeSchemaError,
		Message: fmt.Sprintf("schema validation failed for columns: %s", strings.Join(columns, ", ")),
		Columns: columns,
	}
}

// NoDataset reports an operation attempted before a valid upload.
func NoDataset() *AppError {
	return New(CodeNoDataset, "no dataset loaded; upload a valid file first")
}

// InvalidInput reports a malformed request.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// ConfigInvalid reports a bad configuration value at startup.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InternalError reports an unexpected failure.
func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
