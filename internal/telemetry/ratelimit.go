// Package telemetry provides client-side rate limiting, performance counters,
// and privacy-light usage tracking. Everything here is in-memory and
// per-session; nothing leaves the process.
package telemetry

import (
	"sync"
	"time"
)

// RateLimiter enforces a sliding one-minute window on AI calls. Safe for
// concurrent use.
type RateLimiter struct {
	mu             sync.Mutex
	callsPerMinute int
	calls          []time.Time
	now            func() time.Time
}

// NewRateLimiter creates a limiter allowing callsPerMinute calls in any
// sliding 60s window. Non-positive values fall back to 10.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		callsPerMinute = 10
	}
	return &RateLimiter{
		callsPerMinute: callsPerMinute,
		now:            time.Now,
	}
}

// Allow reports whether a call may proceed now and, if so, records it.
// A denied call is not recorded and does not extend the window.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.prune(rl.now())
	if len(rl.calls) >= rl.callsPerMinute {
		return false
	}
	rl.calls = append(rl.calls, rl.now())
	return true
}

// WaitTime returns how long until the next call would be allowed. Zero when
// a call can proceed immediately.
func (rl *RateLimiter) WaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)
	if len(rl.calls) < rl.callsPerMinute {
		return 0
	}

	oldest := rl.calls[0]
	wait := time.Minute - now.Sub(oldest)
	if wait < 0 {
		return 0
	}
	return wait
}

// CallsPerMinute returns the configured window size.
func (rl *RateLimiter) CallsPerMinute() int {
	return rl.callsPerMinute
}

// prune drops calls older than one minute. Caller holds the lock.
func (rl *RateLimiter) prune(now time.Time) {
	kept := rl.calls[:0]
	for _, t := range rl.calls {
		if now.Sub(t) < time.Minute {
			kept = append(kept, t)
		}
	}
	rl.calls = kept
}
