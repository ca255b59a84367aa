// Package ratelimit provides per-session request throttling over a sliding
// window.
//
// Each session carries its own window of admission timestamps. A request is
// admitted when fewer than the configured limit were recorded within the
// window; rejected requests are never recorded, so a rejected client cannot
// push its own quota further away by retrying.
//
// # Basic Usage
//
//	limiter := ratelimit.New(10, time.Minute)
//
//	result := limiter.Allow(sessionID)
//	if !result.Allowed {
//	    // Tell the caller to come back after result.RetryAfter.
//	}
//
// Exceeding the quota is an expected outcome, not a failure. Callers convert
// a rejected Result into a *RateLimitError so that HTTP handlers and logs
// can treat it as a 429, never as an internal error.
package ratelimit
