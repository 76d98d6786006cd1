package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// incrWindowLua increments a fixed-window counter and arms its expiry on the
// first hit. A counter that somehow lost its TTL is re-armed.
// KEYS[1] = counter key, ARGV[1] = window in milliseconds.
var incrWindowLua = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RateLimiter is a fixed-window request counter shared by every API replica.
type RateLimiter struct {
	rdb goredis.UniversalClient
}

func NewRateLimiter(rdb goredis.UniversalClient) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Allow counts one request against key and reports whether it is within
// limit for the current window. Errors mean the caller must block.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := incrWindowLua.Run(ctx, l.rdb, []string{PrefixRateLimit + key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w: %v", domain.ErrDependency, err)
	}
	return n <= int64(limit), nil
}
