package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// mutationsPerMinute caps write requests per client IP. Reads are not
// rate limited; reports are cheap and cached.
const mutationsPerMinute = 60

const (
	limiterCleanupEvery = 5 * time.Minute
	limiterStaleAfter   = 10 * time.Minute
)

type clientWindow struct {
	windowStart time.Time
	count       int
}

// rateLimiter counts mutations per client IP over a sliding one-minute
// window. Entries for idle clients are swept periodically.
type rateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientWindow
	stopOnce sync.Once
	quit     chan struct{}
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientWindow),
		quit:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterStaleAfter)
			rl.mu.Lock()
			for ip, w := range rl.clients {
				if w.windowStart.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.quit:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.quit) })
}

// allow reports whether a mutation from clientIP fits in its current
// window, recording a metric hit when it does not.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[clientIP]
	if !ok || now.Sub(w.windowStart) > time.Minute {
		rl.clients[clientIP] = &clientWindow{windowStart: now, count: 1}
		return true
	}

	w.count++
	w.windowStart = now
	if w.count > mutationsPerMinute {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
