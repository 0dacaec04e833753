// Package lock provides the named, non-blocking locks that keep at most one instance of a
// periodic task running at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
)

// ErrNotAcquired is returned by TryLock when the lock is held by someone else.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out named locks.
type Locker interface {
	// TryLock acquires the named lock for at most ttl without waiting.
	// It returns ErrNotAcquired when the lock is held.
	TryLock(ctx context.Context, name string, ttl time.Duration) (Lock, error)

	// Close releases the resources of the backend.
	Close() error
}

// Lock is an acquired lock.
type Lock interface {
	Name() string

	// Release frees the lock. Releasing a lock that expired and was taken by another owner
	// leaves the new owner's lock in place.
	Release(ctx context.Context) error
}

// New creates the locker selected by cfg.
func New(cfg config.LockConfig, log *logger.Logger) (Locker, error) {
	switch cfg.Backend {
	case config.LockBackendMemory, "":
		return NewMemoryLocker(), nil
	case config.LockBackendRedis:
		return NewRedisLocker(cfg.RedisURL, cfg.KeyPrefix, log)
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.Backend)
	}
}

func newToken() string {
	return uuid.NewString()
}
