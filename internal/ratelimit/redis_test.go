package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*RedisStorage)(nil)

func setupStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStorage(client, ""), mr
}

func TestRedisStorage_GetSetDelete(t *testing.T) {
	storage, mr := setupStorage(t)

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("127.0.0.1", []byte("3"), time.Minute))
	val, err = storage.Get("127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)
	assert.True(t, mr.Exists("ratelimit:127.0.0.1"))

	mr.FastForward(2 * time.Minute)
	val, err = storage.Get("127.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("k", []byte("v"), 0))
	require.NoError(t, storage.Delete("k"))
	assert.False(t, mr.Exists("ratelimit:k"))
}

func TestRedisStorage_ResetKeepsForeignKeys(t *testing.T) {
	storage, mr := setupStorage(t)

	require.NoError(t, mr.Set("session:other", "x"))
	require.NoError(t, storage.Set("a", []byte("1"), 0))
	require.NoError(t, storage.Set("b", []byte("2"), 0))

	require.NoError(t, storage.Reset())
	assert.False(t, mr.Exists("ratelimit:a"))
	assert.False(t, mr.Exists("ratelimit:b"))
	assert.True(t, mr.Exists("session:other"))

	// Empty reset is a no-op.
	require.NoError(t, storage.Reset())
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = Connect("not a url")
	assert.Error(t, err)
}
