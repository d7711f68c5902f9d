package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeExists       ErrorType = "exists"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFile         ErrorType = "file"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// FileIOError represents a custom error with context
type FileIOError struct {
	Type    ErrorType
	Message string
	Path    string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *FileIOError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *FileIOError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *FileIOError) WithContext(key string, value interface{}) *FileIOError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithPath records the path the error refers to
func (e *FileIOError) WithPath(path string) *FileIOError {
	e.Path = path
	return e
}

// New creates a new FileIOError
func New(errType ErrorType, message string) *FileIOError {
	return &FileIOError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error
func Wrap(err error, errType ErrorType, message string) *FileIOError {
	return &FileIOError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// KindOf returns the ErrorType of the first FileIOError in err's chain,
// or ErrorTypeUnknown.
func KindOf(err error) ErrorType {
	var fe *FileIOError
	if stderrors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, errType ErrorType) bool {
	return err != nil && KindOf(err) == errType
}

func IsNotFound(err error) bool     { return Is(err, ErrorTypeNotFound) }
func IsPermission(err error) bool   { return Is(err, ErrorTypePermission) }
func IsFileNotFound(err error) bool { return Is(err, ErrorTypeFileNotFound) }
func IsExists(err error) bool       { return Is(err, ErrorTypeExists) }

// NotFoundError reports a directory or file expected to exist that does not
func NotFoundError(path string, err error) *FileIOError {
	return Wrap(err, ErrorTypeNotFound, "no such file or directory").WithPath(path)
}

// PermissionError reports an unreadable or unwritable path
func PermissionError(path string, err error) *FileIOError {
	return Wrap(err, ErrorTypePermission, "permission denied").WithPath(path)
}

// FileNotFoundError reports an exhausted search. Path is the requested
// relative target.
func FileNotFoundError(target string) *FileIOError {
	return New(ErrorTypeFileNotFound, "file not found").WithPath(target)
}

// ExistsError reports a file or directory that already exists
func ExistsError(kind, path string) *FileIOError {
	return New(ErrorTypeExists, fmt.Sprintf("%s already exists", kind)).WithPath(path)
}

// FileErrorf creates a formatted file error
func FileErrorf(format string, args ...interface{}) *FileIOError {
	return New(ErrorTypeFile, fmt.Sprintf(format, args...))
}

// ValidationError represents a validation error
func ValidationError(message string) *FileIOError {
	return New(ErrorTypeValidation, message)
}

// ValidationErrorf creates a formatted validation error
func ValidationErrorf(format string, args ...interface{}) *FileIOError {
	return New(ErrorTypeValidation, fmt.Sprintf(format, args...))
}

// ConfigErrorf creates a formatted configuration error
func ConfigErrorf(format string, args ...interface{}) *FileIOError {
	return New(ErrorTypeConfig, fmt.Sprintf(format, args...))
}
