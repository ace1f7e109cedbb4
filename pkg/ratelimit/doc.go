// Package ratelimit provides client-side pacing for the Twitter API.
//
// The v1.1 cursored list endpoints grant a small fixed budget per window
// (15 requests per 15 minutes), so callers pace themselves before every
// fetch instead of discovering the limit through 429 responses.
//
// Available Implementations:
//
// Sliding Window:
//   - Tracks request times within a moving window
//   - Matches how the API accounts its per-window budget
//   - Default implementation used by the archiver
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Sliding window: 15 requests per 15 minutes
//	limiter := ratelimit.NewSlidingWindow(15, 15*time.Minute)
//
//	// Block until allowed, then fetch
//	limiter.Wait()
//
//	// Or check without blocking
//	if limiter.Allow() {
//	    // Proceed with request
//	}
package ratelimit
