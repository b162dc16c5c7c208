package relay

import (
	"sync"
	"time"
)

// rateLimiter caps a client's publish rate to `limit` per fixed one-second
// window (a new window starts with the first message sent a full second or
// more after the current one began), enforcing the relay's per-connection
// message-rate bound.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Time
	count  int
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{limit: limit}
}

// Allow reports whether another message may be sent right now, advancing
// the window and resetting the count once a full second has elapsed.
func (r *rateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.window) >= time.Second {
		r.window = now
		r.count = 0
	}
	if r.count >= r.limit {
		return false
	}
	r.count++
	return true
}
