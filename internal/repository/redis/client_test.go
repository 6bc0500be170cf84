package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.Storage{RedisURL: mr.Addr()})
	require.NoError(t, err)
	store := NewRedisStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_SetGetDel(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "SESSION:1", `{"a":1}`, time.Minute))

	val, err := store.Get(ctx, "SESSION:1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, val)

	require.NoError(t, store.Del(ctx, "SESSION:1", "SESSION:missing"))

	_, err = store.Get(ctx, "SESSION:1")
	assert.True(t, repository.IsNotFound(err))
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ACCESS_TOKEN:x", "sid", 15*time.Minute))
	assert.Equal(t, 15*time.Minute, mr.TTL("ACCESS_TOKEN:x"))

	mr.FastForward(16 * time.Minute)

	_, err := store.Get(ctx, "ACCESS_TOKEN:x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRedisStore_NoExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "CREDENTIAL:admin", "{}", 0))
	assert.Equal(t, time.Duration(0), mr.TTL("CREDENTIAL:admin"))
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(context.Background(), config.Storage{RedisURL: "127.0.0.1:1"})
	assert.Error(t, err)
}
