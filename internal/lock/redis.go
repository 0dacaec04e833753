package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// releaseScript deletes the key only while it still holds the owner's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker keeps locks in Redis so that several processes can share them.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	log    *logger.Logger
}

// NewRedisLocker connects to the Redis server at url.
func NewRedisLocker(url, prefix string, log *logger.Logger) (*RedisLocker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLocker{rdb: rdb, prefix: prefix, log: log}, nil
}

func (r *RedisLocker) key(name string) string {
	return r.prefix + name
}

func (r *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (Lock, error) {
	token := newToken()

	ok, err := r.rdb.SetNX(ctx, r.key(name), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("setnx %s failed: %w", name, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &redisLock{locker: r, name: name, token: token}, nil
}

func (r *RedisLocker) Close() error {
	return r.rdb.Close()
}

type redisLock struct {
	locker *RedisLocker
	name   string
	token  string
}

func (l *redisLock) Name() string { return l.name }

func (l *redisLock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.locker.rdb, []string{l.locker.key(l.name)}, l.token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock %s: %w", l.name, err)
	}
	if deleted == 0 {
		l.locker.log.Warnw("lock expired before release", "lock", l.name)
	}
	return nil
}
