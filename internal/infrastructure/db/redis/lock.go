package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	lockKey          = "sti-archives:users:lock"
	defaultLockTTL   = 10 * time.Second
	defaultLockWait  = 5 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
)

var ErrLockTimeout = errors.New("timed out waiting for users lock")

// releaseScript deletes the lock only while it still holds our token, so an
// expired holder cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// MutationLock serialises collection rewrites across portal instances.
type MutationLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

func NewMutationLock(client *redis.Client, ttl, wait time.Duration, log zerolog.Logger) *MutationLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &MutationLock{client: client, key: lockKey, ttl: ttl, wait: wait, log: log}
}

// Lock blocks until the lock is held or the wait budget runs out.
func (l *MutationLock) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryBackoff):
		}
	}
}

func (l *MutationLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", l.key).Msg("users lock release failed, waiting for expiry")
	}
}

func (l *MutationLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
