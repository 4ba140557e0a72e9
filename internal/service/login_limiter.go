package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated failed logins per username.
type LoginLimiter interface {
	Allow(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

const loginFailuresPrefix = "auth:login_failures:"

// RedisLoginLimiter counts failures in Redis with a fixed window per username.
type RedisLoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginLimiter builds a limiter allowing maxAttempts failures per window.
func NewRedisLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether another attempt is permitted. On Redis errors it
// allows the attempt and returns the error for logging.
func (l *RedisLoginLimiter) Allow(ctx context.Context, username string) (bool, error) {
	failures, err := l.client.Get(ctx, loginFailuresPrefix+username).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return true, err
	}
	return failures < l.maxAttempts, nil
}

// RecordFailure increments the counter, starting the window on the first failure.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, username string) error {
	key := loginFailuresPrefix + username
	failures, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if failures == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *RedisLoginLimiter) Reset(ctx context.Context, username string) error {
	return l.client.Del(ctx, loginFailuresPrefix+username).Err()
}

// NoopLoginLimiter never throttles.
type NoopLoginLimiter struct{}

func (NoopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (NoopLoginLimiter) RecordFailure(context.Context, string) error { return nil }

func (NoopLoginLimiter) Reset(context.Context, string) error { return nil }
