package errors

import (
	"strings"
)

// Errors represents a non-empty list of errors. A nil Errors means no errors,
// so clients may simply compare an Errors value with nil.
type Errors interface {
	error
	// Slice returns a copy of the underlying (non-nil) errors.
	Slice() []error
	// Len is always > 0.
	Len() int

	sliceNoCopy() []error
}

type errorSlice []error

func (m errorSlice) sliceNoCopy() []error {
	return []error(m)
}

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Append appends the given (possibly nil) error to the given (possibly nil)
// Errors, flattening nested lists. A nil err leaves errs unchanged.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	var out errorSlice
	if errs != nil {
		out = append(out, errs.sliceNoCopy()...)
	}
	if nested, ok := err.(Errors); ok {
		return append(out, nested.sliceNoCopy()...)
	}
	return append(out, err)
}

// Combine combines errors e & f into a single error
func Combine(e, f error) error {
	switch {
	case e == nil:
		return f
	case f == nil:
		return e
	}
	return Append(Append(nil, e), f)
}
