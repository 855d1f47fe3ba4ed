package kitectx

import (
	"context"
	"fmt"
	"sync/atomic"
)

// aborted is the panic value CheckAbort unwinds with
type aborted struct {
	err error
}

// ContextExpiredError is returned by FromContext when the computation was
// unwound by CheckAbort
type ContextExpiredError struct {
	Err error
}

// Error implements error
func (c ContextExpiredError) Error() string {
	return fmt.Sprintf("computation aborted: %s", c.Err)
}

// CheckAbort unwinds the computation if ctx has expired. A zero Context never
// expires.
func (ctx Context) CheckAbort() {
	if ctx.expired == nil {
		return
	}
	if errPtr := (*error)(atomic.LoadPointer(ctx.expired)); errPtr != nil {
		panic(aborted{*errPtr})
	}
}

// FromContext runs f with a Context that expires along with std, and turns
// an abort into a ContextExpiredError. Other panics keep unwinding. std must
// expire eventually, or the goroutine watching it leaks.
func FromContext(std context.Context, f func(Context) error) (err error) {
	if std == nil {
		panic("kitectx.FromContext called on nil context.Context")
	}
	if err := std.Err(); err != nil {
		return ContextExpiredError{err}
	}

	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(aborted)
			if !ok {
				panic(r)
			}
			err = ContextExpiredError{a.err}
		}
	}()
	return f(Background().withContext(std))
}
