package linkml

import "fmt"

// ErrorCode classifies failures raised by the schema view, validation
// engine and service facade as a fixed, closed taxonomy.
type ErrorCode string

const (
	ErrElementNotFound     ErrorCode = "element_not_found"
	ErrCircularDependency  ErrorCode = "circular_dependency"
	ErrCacheError          ErrorCode = "cache_error"
	ErrSerializationError  ErrorCode = "serialization_error"
	ErrDataValidationError ErrorCode = "data_validation_error"
	ErrServiceError        ErrorCode = "service_error"
	ErrTimeoutError        ErrorCode = "timeout_error"
	ErrConfigurationError  ErrorCode = "configuration_error"
	ErrAmbiguousIdentifier ErrorCode = "ambiguous_identifier"
)

// Error is the concrete error type returned by this package. Code lets
// callers branch on failure kind without parsing Message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsCode reports whether err (or any error it wraps) carries code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
