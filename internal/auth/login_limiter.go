package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MaxLoginAttempts failed logins within the lockout window block further tries.
	MaxLoginAttempts = 5
	// LoginLockout is how long the counter (and a full lockout) lasts.
	LoginLockout = 15 * time.Minute
)

// LoginLimiter throttles repeated failed logins. The key is caller-defined;
// the login handler combines client IP and account email.
type LoginLimiter interface {
	// Allowed reports whether this key may attempt a login right now.
	Allowed(ctx context.Context, key string) (bool, error)
	// RecordFailure counts a failed attempt.
	RecordFailure(ctx context.Context, key string) error
	// Reset clears the failure counter after a successful login.
	Reset(ctx context.Context, key string) error
}

// LoginKey builds the throttle key for a login attempt.
func LoginKey(clientIP, email string) string {
	return clientIP + "|" + strings.ToLower(strings.TrimSpace(email))
}

// RedisLoginLimiter keeps failure counters in Redis with a sliding expiry.
type RedisLoginLimiter struct {
	client *redis.Client
}

func NewRedisLoginLimiter(client *redis.Client) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client}
}

func loginFailureKey(key string) string {
	return "login:failures:" + key
}

func (l *RedisLoginLimiter) Allowed(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, loginFailureKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login counter: %w", err)
	}
	return count < MaxLoginAttempts, nil
}

func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, key string) error {
	redisKey := loginFailureKey(key)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, LoginLockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, loginFailureKey(key)).Err(); err != nil {
		return fmt.Errorf("reset login counter: %w", err)
	}
	return nil
}
