package rollbar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithPanic(t *testing.T) {
	SetLogDisabled(true)
	defer SetLogDisabled(false)

	revert := WithPanic(t)
	assert.Panics(t, func() { Critical(errors.New("broken invariant")) })
	revert()
	assert.NotPanics(t, func() { Error(errors.New("reported, not fatal")) })
}

func TestLimiterAlwaysAcceptsFirstWhenNotSampling(t *testing.T) {
	accept := newRollbarLimiter(1, time.Hour)
	assert.True(t, accept())
	// the rate limiter allows a single event per hour
	assert.False(t, accept())
}
