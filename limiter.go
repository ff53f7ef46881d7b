package pulseboard

import (
	"sync"
	"time"
)

// SubmitLimiter rate-limits event submissions per IP address with a sliding
// window.
type SubmitLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
}

// NewSubmitLimiter creates a SubmitLimiter that allows max submissions per
// window. A max of zero or less allows everything.
func NewSubmitLimiter(max int, window time.Duration) *SubmitLimiter {
	return &SubmitLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
	}
}

// StartCleanup drops expired entries every window. Returns a stop function.
func (l *SubmitLimiter) StartCleanup() func() {
	ticker := time.NewTicker(l.window)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (l *SubmitLimiter) cleanup() {
	cutoff := time.Now().Add(-l.window)
	l.mu.Lock()
	for ip, hits := range l.hits {
		kept := prune(hits, cutoff)
		if len(kept) == 0 {
			delete(l.hits, ip)
		} else {
			l.hits[ip] = kept
		}
	}
	l.mu.Unlock()
}

// Allow reports whether ip may submit now and, if so, records the
// submission.
func (l *SubmitLimiter) Allow(ip string) bool {
	if l.max <= 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.hits[ip], now.Add(-l.window))
	if len(kept) >= l.max {
		l.hits[ip] = kept
		return false
	}
	l.hits[ip] = append(kept, now)
	return true
}

// Len returns the number of tracked IPs.
func (l *SubmitLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
