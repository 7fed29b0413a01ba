package lock_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/lock"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".kvc", "lock")
	l := lock.New(path, nil)

	require.NoError(t, l.Acquire(context.Background(), time.Second))
	assert.True(t, l.Held())

	h := l.Holder()
	assert.Equal(t, os.Getpid(), h.PID)
	assert.NotEmpty(t, h.Token)

	require.NoError(t, l.Release())
	assert.False(t, l.Held())
	require.NoError(t, l.Release())
}

func TestSecondHolderTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	first := lock.New(path, nil)
	require.NoError(t, first.Acquire(context.Background(), time.Second))
	defer first.Release()

	second := lock.New(path, nil)
	start := time.Now()
	err := second.Acquire(context.Background(), 150*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVaultLocked)
	assert.True(t, errs.Retryable(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, err.Error(), "pid")
}

func TestWaiterGetsLockAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	first := lock.New(path, nil)
	require.NoError(t, first.Acquire(context.Background(), time.Second))

	go func() {
		time.Sleep(60 * time.Millisecond)
		first.Release()
	}()

	second := lock.New(path, nil)
	require.NoError(t, second.Acquire(context.Background(), 3*time.Second))
	require.NoError(t, second.Release())
}
