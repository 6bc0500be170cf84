package memory

import (
	"context"
	"testing"
	"time"

	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ExpiresWithClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Set(ctx, "forever", "v", 0))
	assert.Equal(t, time.Minute, store.TTL("k"))
	assert.Equal(t, time.Duration(0), store.TTL("forever"))

	now = now.Add(59 * time.Second)
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, time.Duration(-1), store.TTL("k"))

	_, err = store.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestStore_DelAndKeys(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "LOGIN_LOG:1", "a", time.Hour))
	require.NoError(t, store.Set(ctx, "LOGIN_LOG:2", "b", time.Hour))
	require.NoError(t, store.Set(ctx, "SESSION:1", "c", time.Hour))

	assert.ElementsMatch(t, []string{"LOGIN_LOG:1", "LOGIN_LOG:2"}, store.Keys("LOGIN_LOG:"))

	require.NoError(t, store.Del(ctx, "LOGIN_LOG:1", "nope"))
	assert.Len(t, store.Keys("LOGIN_LOG:"), 1)
}
