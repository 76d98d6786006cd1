package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// compareAndDeleteLua atomically performs GET→compare→DEL.
// KEYS[1] = key, ARGV[1] = expected value.
// Returns 0 when the key is absent, 1 on mismatch, 2 when matched and deleted.
var compareAndDeleteLua = goredis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return 0
end
if v ~= ARGV[1] then
  return 1
end
redis.call('DEL', KEYS[1])
return 2
`)

// Store is a TTL key/value store on Redis.
type Store struct {
	rdb goredis.UniversalClient
}

func NewStore(rdb goredis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// Set overwrites any existing value and resets its TTL.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w: %v", domain.ErrDependency, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w: %v", domain.ErrDependency, err)
	}
	return v, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w: %v", domain.ErrDependency, err)
	}
	return nil
}

// CompareAndDelete deletes key only if it currently holds value. present
// reports whether the key existed at all; matched whether it was deleted.
func (s *Store) CompareAndDelete(ctx context.Context, key, value string) (present, matched bool, err error) {
	n, err := compareAndDeleteLua.Run(ctx, s.rdb, []string{key}, value).Int()
	if err != nil {
		return false, false, fmt.Errorf("redis compare-and-delete: %w: %v", domain.ErrDependency, err)
	}
	switch n {
	case 0:
		return false, false, nil
	case 1:
		return true, false, nil
	default:
		return true, true, nil
	}
}
