package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, "test"), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "comparison:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "comparison:all", []byte(`{"rows":[]}`), time.Minute))
	assert.True(t, mr.Exists("test:cache:comparison:all"))

	got, ok, err := c.Get(ctx, "comparison:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"rows":[]}`), got)
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "latest:1:", []byte("x"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("test:cache:latest:1:"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "latest:1:")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("comparison:%d", i), []byte("x"), 0))
	}
	require.NoError(t, c.Set(ctx, "latest:1:", []byte("x"), 0))
	require.NoError(t, mr.Set("other:cache:comparison:x", "keep"))

	require.NoError(t, c.DeletePrefix(ctx, "comparison:"))

	keys := mr.Keys()
	assert.ElementsMatch(t, []string{"test:cache:latest:1:", "other:cache:comparison:x"}, keys)
}

func TestRedisCache_DefaultNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client, "")
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("geovis:cache:k"))
}

func TestRedisCache_GetError(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = DialRedis(context.Background(), mr.Addr())
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}
