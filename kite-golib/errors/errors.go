package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is re-exported from fmt
var Errorf = fmt.Errorf

// New is an alias to Errorf
var New = Errorf

// ErrorfWithStack is Errorf re-exported from github.com/pkg/errors
var ErrorfWithStack = errors.Errorf

// Wrapf annotates err with a message; it returns nil if err is nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// WrapfWithStack is Wrapf re-exported from github.com/pkg/errors
var WrapfWithStack = errors.Wrapf

// WithStack is re-exported from github.com/pkg/errors
var WithStack = errors.WithStack

// Cause is re-exported from github.com/pkg/errors
var Cause = errors.Cause

// HostError reports a failure of the environment the analysis runs in, such
// as an unreadable source file or a malformed configuration. Short is suitable
// for a notification, Full carries the complete diagnostic text.
type HostError struct {
	Short string
	Full  string
	Path  string
	cause error
}

// NewHostError creates a HostError for the given path. The full text is
// derived from the cause, including its stack when one was recorded.
func NewHostError(path string, cause error, format string, args ...interface{}) *HostError {
	short := fmt.Sprintf(format, args...)
	full := short
	if cause != nil {
		full = fmt.Sprintf("%s: %+v", short, cause)
	}
	return &HostError{
		Short: short,
		Full:  full,
		Path:  path,
		cause: cause,
	}
}

// Error implements error
func (e *HostError) Error() string {
	if e.Path == "" {
		return e.Short
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Short)
}

// Cause returns the underlying error, for use with errors.Cause
func (e *HostError) Cause() error {
	return e.cause
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.cause
}

// AsHostError extracts a HostError from err, if there is one in its chain
func AsHostError(err error) (*HostError, bool) {
	for err != nil {
		if he, ok := err.(*HostError); ok {
			return he, true
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			return nil, false
		}
		err = causer.Cause()
	}
	return nil, false
}
