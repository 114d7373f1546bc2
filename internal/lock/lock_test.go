package lock

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLocalLockSequentialAcquire(t *testing.T) {
    l := NewLocalLock()

    release, err := l.Acquire(context.Background())
    require.NoError(t, err)
    release()

    release, err = l.Acquire(context.Background())
    require.NoError(t, err)
    release()
}

func TestLocalLockBusy(t *testing.T) {
    l := NewLocalLock()

    release, err := l.Acquire(context.Background())
    require.NoError(t, err)
    defer release()

    // the holder never releases, so the second caller exhausts the
    // acquisition budget
    _, err = l.Acquire(context.Background())
    assert.ErrorIs(t, err, ErrBusy)
}

func TestLocalLockContextCancel(t *testing.T) {
    l := NewLocalLock()

    release, err := l.Acquire(context.Background())
    require.NoError(t, err)
    defer release()

    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    _, err = l.Acquire(ctx)
    assert.ErrorIs(t, err, context.Canceled)
}
