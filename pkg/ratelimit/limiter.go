package ratelimit

import (
	"sync"
	"time"
)

// Limiter paces outbound API calls.
type Limiter interface {
	// Allow reports whether a call may proceed now, consuming budget if so.
	Allow() bool
	// Wait blocks until a call may proceed, consuming budget.
	Wait()
	// Reset clears all consumed budget.
	Reset()
}

// SlidingWindow admits at most maxRequests calls within any span of the
// window size. This mirrors how the Twitter API accounts its per-window
// budgets, so a correctly sized window stays under the remote limit.
type SlidingWindow struct {
	window      time.Duration
	maxRequests int
	sent        []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a sliding window limiter with an empty window.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		window:      window,
		maxRequests: maxRequests,
		sent:        make([]time.Time, 0, maxRequests),
	}
}

// Allow consumes one slot if the window has room.
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.expire(now)

	if len(sw.sent) < sw.maxRequests {
		sw.sent = append(sw.sent, now)
		return true
	}
	return false
}

// Wait blocks until the oldest recorded call slides out of the window.
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.mu.Lock()
		var sleep time.Duration
		if len(sw.sent) > 0 {
			sleep = sw.window - time.Since(sw.sent[0])
		}
		sw.mu.Unlock()

		if sleep <= 0 {
			sleep = 100 * time.Millisecond
		}
		time.Sleep(sleep)
	}
}

// Reset forgets all recorded calls.
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.sent = sw.sent[:0]
}

// expire drops calls older than the window. Callers must hold the mutex.
func (sw *SlidingWindow) expire(now time.Time) {
	cutoff := now.Add(-sw.window)

	i := 0
	for i < len(sw.sent) && sw.sent[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(sw.sent, sw.sent[i:])
		sw.sent = sw.sent[:len(sw.sent)-i]
	}
}

// TokenBucket grants a burst of capacity calls, then refills the whole
// bucket once the refill period elapses. Coarser than SlidingWindow, but
// a better fit when short bursts are acceptable.
type TokenBucket struct {
	capacity    int
	tokens      int
	refillEvery time.Duration
	lastRefill  time.Time
	mu          sync.Mutex
}

// NewTokenBucket creates a token bucket limiter starting full.
func NewTokenBucket(capacity int, refillEvery time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:    capacity,
		tokens:      capacity,
		refillEvery: refillEvery,
		lastRefill:  time.Now(),
	}
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until the next refill frees a token.
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		sleep := tb.refillEvery - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if sleep <= 0 {
			sleep = 100 * time.Millisecond
		}
		time.Sleep(sleep)
	}
}

// Reset refills the bucket immediately.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill tops the bucket back up once the period has elapsed. Callers must
// hold the mutex.
func (tb *TokenBucket) refill() {
	if time.Since(tb.lastRefill) >= tb.refillEvery {
		tb.tokens = tb.capacity
		tb.lastRefill = time.Now()
	}
}
