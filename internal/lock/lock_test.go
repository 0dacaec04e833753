package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	locker, err := NewRedisLocker("redis://"+server.Addr(), "test:", logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { locker.Close() })

	return locker, server
}

func testLockerContract(t *testing.T, locker Locker) {
	t.Helper()
	ctx := context.Background()

	held, err := locker.TryLock(ctx, "index-safes", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "index-safes", held.Name())

	_, err = locker.TryLock(ctx, "index-safes", time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)

	// other names are independent
	other, err := locker.TryLock(ctx, "check-reorgs", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, held.Release(ctx))

	again, err := locker.TryLock(ctx, "index-safes", time.Minute)
	require.NoError(t, err)

	// a stale owner releasing twice must not free the new owner's lock
	require.NoError(t, held.Release(ctx))
	_, err = locker.TryLock(ctx, "index-safes", time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, again.Release(ctx))
}

func TestMemoryLocker(t *testing.T) {
	testLockerContract(t, NewMemoryLocker())
}

func TestMemoryLocker_Expiry(t *testing.T) {
	locker := NewMemoryLocker()
	now := time.Unix(1000, 0)
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := locker.TryLock(ctx, "task", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	second, err := locker.TryLock(ctx, "task", time.Second)
	require.NoError(t, err)

	require.NoError(t, first.Release(ctx))
	_, err = locker.TryLock(ctx, "task", time.Second)
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, second.Release(ctx))
}

func TestRedisLocker(t *testing.T) {
	locker, server := newRedisLocker(t)
	testLockerContract(t, locker)

	ctx := context.Background()
	held, err := locker.TryLock(ctx, "process-decoded", 10*time.Second)
	require.NoError(t, err)
	require.True(t, server.Exists("test:process-decoded"))

	server.FastForward(11 * time.Second)
	require.False(t, server.Exists("test:process-decoded"))

	next, err := locker.TryLock(ctx, "process-decoded", 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, held.Release(ctx))
	require.True(t, server.Exists("test:process-decoded"))
	require.NoError(t, next.Release(ctx))
	require.False(t, server.Exists("test:process-decoded"))
}

func TestNew(t *testing.T) {
	locker, err := New(config.LockConfig{Backend: config.LockBackendMemory}, logger.NewNopLogger())
	require.NoError(t, err)
	require.IsType(t, &MemoryLocker{}, locker)

	server := miniredis.RunT(t)
	locker, err = New(config.LockConfig{
		Backend:   config.LockBackendRedis,
		RedisURL:  "redis://" + server.Addr(),
		KeyPrefix: "p:",
	}, logger.NewNopLogger())
	require.NoError(t, err)
	require.IsType(t, &RedisLocker{}, locker)
	require.NoError(t, locker.Close())

	_, err = New(config.LockConfig{Backend: "etcd"}, logger.NewNopLogger())
	require.Error(t, err)
}
