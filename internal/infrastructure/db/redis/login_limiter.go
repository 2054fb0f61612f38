package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// LoginLimiter counts failed logins per username in Redis. The counter
// expires lockout after the first failure, so a locked account unlocks on
// its own.
// Key format: login:fail:<username>
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginLimiter wraps client. Zero values fall back to 5 attempts and a
// 15 minute window.
func NewLoginLimiter(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

func (l *LoginLimiter) IsLocked(ctx context.Context, username string) (bool, error) {
	n, err := l.client.Get(ctx, failureKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n >= l.maxAttempts, nil
}

func (l *LoginLimiter) RegisterFailure(ctx context.Context, username string) (bool, error) {
	key := failureKey(username)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.lockout)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register login failure: %w", err)
	}
	return incr.Val() >= l.maxAttempts, nil
}

func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, failureKey(username)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

func failureKey(username string) string {
	return fmt.Sprintf("login:fail:%s", username)
}
