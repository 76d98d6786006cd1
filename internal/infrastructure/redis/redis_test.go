package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStore_SetGetDelete(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "otp:a@b.com", "one", time.Minute))
	require.NoError(t, s.Set(ctx, "otp:a@b.com", "two", time.Minute))

	v, ok, err := s.Get(ctx, "otp:a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, s.Delete(ctx, "otp:a@b.com"))
	_, ok, err = s.Get(ctx, "otp:a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", 300*time.Second))
	mr.FastForward(299 * time.Second)
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestStore_SetResetsTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v1", 10*time.Second))
	mr.FastForward(8 * time.Second)
	require.NoError(t, s.Set(ctx, "k", "v2", 10*time.Second))
	mr.FastForward(8 * time.Second)

	v, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestStore_CompareAndDelete(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewStore(rdb)
	ctx := context.Background()

	present, matched, err := s.CompareAndDelete(ctx, "k", "v")
	require.NoError(t, err)
	assert.False(t, present)
	assert.False(t, matched)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	present, matched, err = s.CompareAndDelete(ctx, "k", "other")
	require.NoError(t, err)
	assert.True(t, present)
	assert.False(t, matched)

	present, matched, err = s.CompareAndDelete(ctx, "k", "v")
	require.NoError(t, err)
	assert.True(t, present)
	assert.True(t, matched)

	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestStore_CompareAndDelete_ConcurrentSingleWinner(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewStore(rdb)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, matched, err := s.CompareAndDelete(ctx, "k", "v"); err == nil && matched {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestStore_BackendDown_ReturnsDependencyError(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewStore(rdb)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrDependency)
}

func TestRateLimiter_SixthRequestRejected_ThenWindowResets(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRateLimiter(rdb)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "send-otp:1.2.3.4", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := l.Allow(ctx, "send-otp:1.2.3.4", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := l.Allow(ctx, "send-otp:5.6.7.8", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, other)

	mr.FastForward(61 * time.Second)
	ok, err = l.Allow(ctx, "send-otp:1.2.3.4", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_BackendDown_Errors(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRateLimiter(rdb)
	mr.Close()

	ok, err := l.Allow(context.Background(), "k", 5, time.Minute)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrDependency)
}

func TestBlacklist_AddContains(t *testing.T) {
	mr, rdb := newTestRedis(t)
	b := NewBlacklist(rdb)
	ctx := context.Background()

	found, err := b.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)

	added, err := b.Add(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = b.Add(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, added)

	found, err = b.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, found)

	mr.FastForward(time.Hour + time.Second)
	found, _ = b.Contains(ctx, "jti-1")
	assert.False(t, found)
}
