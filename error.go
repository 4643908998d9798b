package docspider

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are produced once at collaborator boundaries (browser, HTTP client,
// search engine) and inspected with ErrorCode everywhere else. Code-free
// errors are reported as internal errors.
const (
	ECONFLICT    = "conflict"    // conflicting write
	EINTERNAL    = "internal"    // unexpected internal error
	EINVALID     = "invalid"     // malformed input or response
	ENOTFOUND    = "not_found"   // missing page, document, or title
	ETIMEOUT     = "timeout"     // navigation or task wait exceeded its deadline
	EUNAVAILABLE = "unavailable" // collaborator unreachable or failing transiently
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code identifies the error class. One of the E* constants.
	Code string

	// Message is a human-readable description of the failure.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docspider error: code=%s message=%s", e.Code, e.Message)
}

// Errorf returns a new Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the error, if it is an application error.
// Returns EINTERNAL for non-application errors and an empty string for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the error, if it is an application
// error. Returns a generic message for non-application errors and an empty
// string for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
