// Package kitectx encapsulates the capability to abort computations.
//
// A Context follows a context.Context. Long computations call CheckAbort
// between steps; once the Context has expired the call unwinds the
// computation with a panic that FromContext recovers.
//
// NOTE: a Context must not be used from a goroutine other than the one that
// called FromContext, since the unwinding panic would have no handler.
package kitectx

import (
	"context"
	"sync/atomic"
	"unsafe"

	"github.com/kiteco/pyinfer/kite-golib/kitelog"
)

// Context manages an abort condition and a logger
// it typically should be passed explicitly to functions rather than stored in another type
type Context struct {
	context context.Context
	expired *unsafe.Pointer // pointer to unsafe.Pointer to expiry error
	Logger  *kitelog.Logger
}

// waitExpiry waits until ctx's underlying context.Context is expired, and sets the expired flag
func (ctx Context) waitExpiry() {
	stdctx := ctx.Context()
	if done := stdctx.Done(); done != nil {
		<-done
		err := stdctx.Err()
		atomic.StorePointer(ctx.expired, unsafe.Pointer(&err))
	}
}

// withContext handles asynchronously setting the expired flag
func (ctx Context) withContext(std context.Context) Context {
	ctx.context = std
	ctx.expired = new(unsafe.Pointer)
	go ctx.waitExpiry()
	return ctx
}

// Background returns a context that doesn't expire
func Background() Context {
	return Context{
		Logger: kitelog.Discard,
	}
}

// WithLogger returns a new Context with the provided kitelog.Logger set
func (ctx Context) WithLogger(l *kitelog.Logger) Context {
	ctx.Logger = l
	return ctx
}

// Context returns a context.Context for use with libraries/packages that don't support kitectx
func (ctx Context) Context() context.Context {
	if ctx.context == nil {
		return context.Background()
	}
	return ctx.context
}

// Expired reports whether the context has been observed as expired, without aborting
func (ctx Context) Expired() bool {
	if ctx.expired == nil {
		return false
	}
	return atomic.LoadPointer(ctx.expired) != nil
}
