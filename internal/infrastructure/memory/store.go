// Package memory holds single-process implementations of the OTP store, the
// rate limiter and the token blacklist. State is lost on restart and is not
// shared between replicas; use the redis backend for anything beyond one
// instance.
package memory

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// Store is a mutex-guarded TTL map. Expired entries are treated as absent on
// read and removed by a background sweeper until Close is called.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewStore starts a store with its sweeper running. now may be nil.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		entries: make(map[string]entry),
		now:     now,
		stop:    make(chan struct{}),
	}
	go sweep(s.stop, s.sweep)
	return s
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	return e.value, ok, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// CompareAndDelete deletes key only if it currently holds value.
func (s *Store) CompareAndDelete(_ context.Context, key, value string) (present, matched bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return false, false, nil
	}
	if e.value != value {
		return true, false, nil
	}
	delete(s.entries, key)
	return true, true, nil
}

// Close stops the sweeper. The store stays usable.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

// live returns the entry for key, dropping it if expired. Caller holds mu.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func (s *Store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func sweep(stop <-chan struct{}, fn func()) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			fn()
		}
	}
}
