package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	backend "github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, "test:"), mr
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:s1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:s1"))
}

func TestLocker_HeldLockBlocksUntilTimeout(t *testing.T) {
	locker, _ := newTestLocker(t)

	unlock, err := locker.Lock(context.Background(), "s1", time.Minute)
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "s1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_UnlockOnlyReleasesOwnLock(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// Simulate TTL expiry plus re-acquisition by another holder.
	require.NoError(t, mr.Set("test:lock:s1", "someone-else"))

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:s1"), "a stale unlock must not remove another holder's lock")
}

func TestLocker_DifferentKeysDoNotContend(t *testing.T) {
	ctx := context.Background()
	locker, _ := newTestLocker(t)

	unlockA, err := locker.Lock(ctx, "a", time.Minute)
	require.NoError(t, err)
	defer unlockA(ctx)

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx2, "b", time.Minute)
	require.NoError(t, err)
	defer unlockB(ctx2)
}
