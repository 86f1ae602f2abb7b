package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/provisioner/pkg/logger"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes processing across replicas with a SET NX lease.
type RedisLocker struct {
	client       redis.UniversalClient
	prefix       string
	ttl          time.Duration
	pollInterval time.Duration
	log          *slog.Logger
}

// RedisLockerOption configures a RedisLocker.
type RedisLockerOption func(*RedisLocker)

// WithLockTTL sets the lease duration. It must exceed the slowest dispatch,
// otherwise the lease can expire mid-event.
func WithLockTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLockPollInterval sets how often a held lock is retried.
func WithLockPollInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithLockKeyPrefix sets the redis key prefix.
func WithLockKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisLocker) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithLockLogger sets the logger for release failures.
func WithLockLogger(log *slog.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		if log != nil {
			l.log = log
		}
	}
}

// NewRedisLocker creates a RedisLocker. It panics on a nil client.
func NewRedisLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	if client == nil {
		panic("provisioning: redis client cannot be nil")
	}
	l := &RedisLocker{
		client:       client,
		prefix:       "provisioner:lock:subscription:",
		ttl:          60 * time.Second,
		pollInterval: 50 * time.Millisecond,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock implements Locker. It polls until the lease is taken or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, id int64) (func(), error) {
	key := l.prefix + strconv.FormatInt(id, 10)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Join(ErrLockUnavailable, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockUnavailable, ctx.Err())
		case <-time.After(l.pollInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled; release on a fresh one.
			releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				l.log.WarnContext(ctx, "failed to release subscription lock",
					logger.SubscriptionID(id),
					logger.Error(err),
				)
			}
		})
	}, nil
}
