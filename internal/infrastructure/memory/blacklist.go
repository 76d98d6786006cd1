package memory

import (
	"context"
	"time"
)

// Blacklist holds revoked token ids in a Store until they expire.
type Blacklist struct {
	store *Store
}

func NewBlacklist(now func() time.Time) *Blacklist {
	return &Blacklist{store: NewStore(now)}
}

// Add blacklists jti for ttl. It reports false when jti was already present.
func (b *Blacklist) Add(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(jti); ok {
		return false, nil
	}
	s.entries[jti] = entry{value: "1", expiresAt: s.now().Add(ttl)}
	return true, nil
}

func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	_, ok, err := b.store.Get(ctx, jti)
	return ok, err
}

func (b *Blacklist) Close() { b.store.Close() }
