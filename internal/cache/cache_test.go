package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	mc := NewMemoryCache(time.Hour)
	defer mc.Close()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	value := []byte("state")
	require.NoError(t, mc.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), got)

	now = now.Add(2 * time.Minute)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	mc.sweep()
	assert.Equal(t, 0, mc.Len())

	require.NoError(t, mc.Set(ctx, "k2", []byte("v"), time.Minute))
	require.NoError(t, mc.Delete(ctx, "k2"))
	_, err = mc.Get(ctx, "k2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()
	ctx := context.Background()

	require.NoError(t, rc.Ping(ctx))

	require.NoError(t, rc.Set(ctx, SessionKey("abc"), []byte("state"), time.Minute))
	got, err := rc.Get(ctx, SessionKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), got)

	mr.FastForward(2 * time.Minute)
	_, err = rc.Get(ctx, SessionKey("abc"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, rc.Delete(ctx, "k"))
	_, err = rc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(addr, "", 0)
	assert.Error(t, err)
}
