package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	window   Window
	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter(window Window) *MemoryLimiter {
	return &MemoryLimiter{
		window:   window,
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the request fits in the key's current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (Result, error) {
	if l.window.Limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	slot, reset := l.window.slot(now)

	l.mu.Lock()
	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: slot}
		l.counters[key] = entry
	}
	if entry.window != slot {
		entry.window = slot
		entry.count = 0
	}
	if entry.count >= l.window.Limit {
		l.mu.Unlock()
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	remaining := l.window.Limit - entry.count
	l.mu.Unlock()
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}
