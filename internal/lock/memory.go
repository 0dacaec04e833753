package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryLocker keeps locks in process memory.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (m *MemoryLocker) TryLock(_ context.Context, name string, ttl time.Duration) (Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if held, ok := m.locks[name]; ok && now.Before(held.expires) {
		return nil, ErrNotAcquired
	}

	token := newToken()
	m.locks[name] = memoryEntry{token: token, expires: now.Add(ttl)}
	return &memoryLock{locker: m, name: name, token: token}, nil
}

func (m *MemoryLocker) Close() error {
	return nil
}

func (m *MemoryLocker) release(name, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, ok := m.locks[name]; ok && held.token == token {
		delete(m.locks, name)
	}
}

type memoryLock struct {
	locker *MemoryLocker
	name   string
	token  string
}

func (l *memoryLock) Name() string { return l.name }

func (l *memoryLock) Release(context.Context) error {
	l.locker.release(l.name, l.token)
	return nil
}
