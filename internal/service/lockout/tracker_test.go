package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	now     time.Time
	store   *memory.Store
	tracker *Tracker
}

func newFixture() *fixture {
	f := &fixture{now: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.store = memory.NewStore(clock)
	f.tracker = NewTracker(f.store, config.DefaultSecurity(), clock)
	return f
}

func TestTracker_LocksAfterThreshold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		rec, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
		require.NoError(t, err)
		assert.Equal(t, i, rec.Attempts)
		assert.Nil(t, rec.LockedUntil)

		status, err := f.tracker.Check(ctx, "1.2.3.4", "admin")
		require.NoError(t, err)
		assert.False(t, status.Locked)
		assert.Equal(t, i, status.Attempts)
	}

	rec, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	require.NotNil(t, rec.LockedUntil)
	assert.Equal(t, f.now.Add(15*time.Minute), *rec.LockedUntil)

	status, err := f.tracker.Check(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Equal(t, 900, status.RemainingSeconds)

	f.now = f.now.Add(90*time.Second + 500*time.Millisecond)
	status, err = f.tracker.Check(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.Equal(t, 810, status.RemainingSeconds)
}

func TestTracker_ClearResetsCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
		require.NoError(t, err)
	}
	require.NoError(t, f.tracker.Clear(ctx, "1.2.3.4", "admin"))

	rec, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
}

func TestTracker_KeyedByIPAndUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
		require.NoError(t, err)
	}

	other, err := f.tracker.Check(ctx, "5.6.7.8", "admin")
	require.NoError(t, err)
	assert.False(t, other.Locked)
	assert.Equal(t, 0, other.Attempts)
}

func TestTracker_RecordExpiresWithLockoutWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, f.store.TTL("LOGIN_ATTEMPTS:1.2.3.4:admin"))

	f.now = f.now.Add(15 * time.Minute)
	status, err := f.tracker.Check(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Zero(t, status.Attempts)
}

func TestTracker_CorruptRecordIsIgnored(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, "LOGIN_ATTEMPTS:1.2.3.4:admin", "{not json", time.Minute))

	status, err := f.tracker.Check(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.False(t, status.Locked)

	rec, err := f.tracker.RecordFailure(ctx, "1.2.3.4", "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
}
