package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

func TestManager_LoadOrStart(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.NewStore())

	t.Run("missing session is created and persisted", func(t *testing.T) {
		sess, err := m.LoadOrStart(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "fresh", sess.ID)
		assert.Empty(t, sess.Instances)

		stored, err := m.Load(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "fresh", stored.ID)
	})

	t.Run("existing session is returned as stored", func(t *testing.T) {
		sess := domain.NewSession("known")
		sess.Variables["order_id"] = "A-1"
		require.NoError(t, m.Save(ctx, sess))

		got, err := m.LoadOrStart(ctx, "known")
		require.NoError(t, err)
		assert.Equal(t, "A-1", got.Variables["order_id"])
	})

	t.Run("load of a missing session fails", func(t *testing.T) {
		_, err := m.Load(ctx, "never-seen")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestManager_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.NewStore())

	require.NoError(t, m.Save(ctx, domain.NewSession("a")))
	require.NoError(t, m.Save(ctx, domain.NewSession("b")))

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_WithLockSerializesSameSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.NewStore())

	const workers = 8
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(ctx, "shared", func(ctx context.Context) error {
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter, "critical sections must not interleave")
}

type flakyLocker struct {
	err      error
	unlocked bool
}

func (f *flakyLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return func(ctx context.Context) error {
		f.unlocked = true
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("lock failure aborts the turn", func(t *testing.T) {
		locker := &flakyLocker{err: errors.New("lock held elsewhere")}
		m := NewManager(memory.NewStore(), WithLocker(locker), WithLockTTL(time.Second))

		err := m.WithLock(ctx, "s1", func(ctx context.Context) error {
			t.Fatal("critical section must not run without the lock")
			return nil
		})
		assert.Error(t, err)
	})

	t.Run("lock is released after the critical section", func(t *testing.T) {
		locker := &flakyLocker{}
		m := NewManager(memory.NewStore(), WithLocker(locker))

		err := m.WithLock(ctx, "s1", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		assert.True(t, locker.unlocked)
	})
}
