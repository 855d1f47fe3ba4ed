package rollbar

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// newRollbarLimiter creates a sampling, rate-limited filter: a downSampleRate
// of 3 accepts every 3rd message on average, and accepted messages are then
// limited to one per rateLimitDelay. It is safe for concurrent use.
func newRollbarLimiter(downSampleRate int, rateLimitDelay time.Duration) func() bool {
	var mu sync.Mutex
	random := rand.New(rand.NewSource(time.Now().UnixNano()))
	limiter := rate.NewLimiter(rate.Every(rateLimitDelay), 1)

	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		if random.Intn(downSampleRate) != 0 {
			return false
		}
		return limiter.Allow()
	}
}
