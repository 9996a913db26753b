package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter implements a fixed-window rate limiter backed by Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window Window
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string, window Window) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		window: window,
	}
}

// Allow checks whether the request fits in the key's current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (Result, error) {
	if l == nil || l.client == nil || l.window.Limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	slot, reset := l.window.slot(now)
	redisKey := l.buildKey(key, slot)
	ttl := l.window.seconds() * 2
	res, errEval := redisIncrScript.Run(ctx, l.client, []string{redisKey}, ttl).Result()
	if errEval != nil {
		return Result{}, errEval
	}
	count, ok := res.(int64)
	if !ok {
		switch v := res.(type) {
		case int:
			count = int64(v)
		case uint64:
			count = int64(v)
		default:
			return Result{}, errors.New("rate limit redis: unexpected response type")
		}
	}
	if count > int64(l.window.Limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := l.window.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string, slot int64) string {
	slotStr := strconv.FormatInt(slot, 10)
	if l.prefix == "" {
		return key + ":" + slotStr
	}
	return l.prefix + ":" + key + ":" + slotStr
}
