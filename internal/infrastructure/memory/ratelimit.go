package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count int
	ends  time.Time
}

// RateLimiter is a per-key fixed-window counter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	l := &RateLimiter{
		windows: make(map[string]*window),
		now:     now,
		stop:    make(chan struct{}),
	}
	go sweep(l.stop, l.sweep)
	return l
}

// Allow counts one request against key. The counter resets once window has
// elapsed since the first request of the current window.
func (l *RateLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.ends) {
		w = &window{ends: now.Add(win)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= limit, nil
}

func (l *RateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *RateLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, w := range l.windows {
		if !now.Before(w.ends) {
			delete(l.windows, k)
		}
	}
}
