// Package ratelimit implements fixed-window request rate limiting, keyed per
// authenticated user or per client IP. A memory limiter is always available;
// a Redis limiter takes over when an address is configured so the window is
// shared across replicas.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Result, error)
}

// Window holds the fixed-window parameters.
type Window struct {
	// Limit is the maximum number of requests per window. Zero or negative
	// disables limiting.
	Limit int
	// Seconds is the window length. Values below 1 are treated as 1.
	Seconds int
}

func (w Window) seconds() int64 {
	if w.Seconds < 1 {
		return 1
	}
	return int64(w.Seconds)
}

// slot returns the window index and the instant the window resets.
func (w Window) slot(now time.Time) (int64, time.Time) {
	sec := w.seconds()
	slot := now.Unix() / sec
	reset := time.Unix((slot+1)*sec, 0).UTC()
	return slot, reset
}

// UserKey builds a limiter key for an authenticated user.
func UserKey(userID uint64) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("u:%d", userID)
}

// IPKey builds a limiter key for an unauthenticated caller.
func IPKey(ip string) string {
	if ip == "" {
		return ""
	}
	return "ip:" + ip
}
