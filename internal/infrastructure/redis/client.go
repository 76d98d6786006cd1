package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jeeva2692001/mindkonnect/internal/config"
)

// Key prefixes keep OTP codes, rate-limit windows and revoked token ids apart
// in a shared keyspace.
const (
	PrefixOTP       = "otp:"
	PrefixRateLimit = "rl:"
	PrefixBlacklist = "bl:"
)

// NewClient opens a Redis client and pings it so a bad address fails at
// startup rather than on the first request.
func NewClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
