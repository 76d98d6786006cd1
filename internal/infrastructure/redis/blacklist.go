package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// Blacklist records revoked refresh-token ids until the token would have
// expired anyway.
type Blacklist struct {
	rdb goredis.UniversalClient
}

func NewBlacklist(rdb goredis.UniversalClient) *Blacklist {
	return &Blacklist{rdb: rdb}
}

// Add blacklists jti for ttl. It reports false when jti was already present.
func (b *Blacklist) Add(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	added, err := b.rdb.SetNX(ctx, PrefixBlacklist+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis blacklist add: %w: %v", domain.ErrDependency, err)
	}
	return added, nil
}

func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, PrefixBlacklist+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis blacklist lookup: %w: %v", domain.ErrDependency, err)
	}
	return n > 0, nil
}
