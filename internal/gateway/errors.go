package gateway

import "errors"

// Sentinel errors for classified gateway failures. Callers match with
// errors.Is to decide whether to surface, wait, or reconfigure.
var (
	// ErrNoAPIKey means generation was attempted without credentials.
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrAuth wraps upstream authentication failures. Not retried.
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited covers both the local limiter and upstream 429s.
	// Not retried; the caller decides when to try again.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrTimeout means the call exceeded its deadline after all retries.
	ErrTimeout = errors.New("generation timed out")

	// ErrInputTooLarge means a brief, task, or draft exceeded its limit.
	ErrInputTooLarge = errors.New("input exceeds size limit")

	// ErrUpstream is the catch-all for model-side failures after retries.
	ErrUpstream = errors.New("generation failed")
)
