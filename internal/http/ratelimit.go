package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// rateLimitPerMinute caps mutating requests per client IP.
	rateLimitPerMinute    = 60
	rateLimitCleanupEvery = 5 * time.Minute
	rateLimitStaleAfter   = 10 * time.Minute
)

// rateLimiter tracks a fixed one-minute request window per client IP.
// Rejected requests are counted so the server can report them.
type rateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*requestWindow
	rejected atomic.Uint64
	done     chan struct{}
	stopOnce sync.Once
}

type requestWindow struct {
	start time.Time
	count int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*requestWindow),
		done:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// allow records a request from the given IP and reports whether it fits
// in the client's current window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.start) > time.Minute {
		rl.windows[clientIP] = &requestWindow{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > rateLimitPerMinute {
		rl.rejected.Add(1)
		return false
	}
	return true
}

// rejectedCount reports how many requests the limiter has turned away.
func (rl *rateLimiter) rejectedCount() uint64 {
	return rl.rejected.Load()
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale(time.Now())
		case <-rl.done:
			return
		}
	}
}

// dropStale removes windows idle past the staleness cutoff so the map
// does not grow with one-off clients.
func (rl *rateLimiter) dropStale(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rateLimitStaleAfter)
	for ip, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

// shutdown stops the cleanup goroutine.
func (rl *rateLimiter) shutdown() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
