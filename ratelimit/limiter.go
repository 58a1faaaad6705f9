// Package ratelimit provides an in-process sliding-window attempt store
// keyed by (bucket, key), for surrounding surfaces (login forms, endpoint
// throttles) that need to bound retries. It is an explicit, injected
// value rather than process-wide shared state.
package ratelimit

import (
	"sync"
	"time"
)

// Rule describes one limit: at most MaxAttempts within Window, tracked
// per key inside the named bucket.
type Rule struct {
	Bucket      string
	MaxAttempts int
	Window      time.Duration
}

const (
	staleMultiplier = 3
	minStaleAge     = time.Minute
	sweepEveryOps   = 256
)

type entry struct {
	attempts []time.Time
	window   time.Duration
	lastSeen time.Time
}

// Limiter tracks attempt history per (bucket, key). All methods are safe
// for concurrent use. Stale keys are swept opportunistically every
// sweepEveryOps operations, so memory stays bounded by the active key set.
type Limiter struct {
	mu            sync.Mutex
	entries       map[string]*entry
	opsSinceSweep int
	now           func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// IsLimited reports whether the key is currently over the rule's limit,
// without recording an attempt. Rules with a non-positive limit or window
// never limit.
func (l *Limiter) IsLimited(rule Rule, key string) bool {
	if rule.MaxAttempts < 1 || rule.Window <= 0 {
		return false
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	limited := l.overLimit(rule, key, now)
	l.maybeSweep(now)
	return limited
}

// Allow records an attempt for the key if it is under the rule's limit
// and reports whether the attempt was admitted.
func (l *Limiter) Allow(rule Rule, key string) bool {
	if rule.MaxAttempts < 1 || rule.Window <= 0 {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.overLimit(rule, key, now) {
		l.maybeSweep(now)
		return false
	}

	e := l.touch(rule, key, now)
	e.attempts = append(e.attempts, now)
	l.maybeSweep(now)
	return true
}

// Reset drops all tracked state.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
	l.opsSinceSweep = 0
}

func fullKey(rule Rule, key string) string {
	return rule.Bucket + ":" + key
}

func (l *Limiter) touch(rule Rule, key string, now time.Time) *entry {
	fk := fullKey(rule, key)
	e, ok := l.entries[fk]
	if !ok {
		e = &entry{}
		l.entries[fk] = e
	}
	e.window = rule.Window
	e.lastSeen = now
	return e
}

func (l *Limiter) overLimit(rule Rule, key string, now time.Time) bool {
	e := l.touch(rule, key, now)
	e.prune(now.Add(-rule.Window))
	return len(e.attempts) >= rule.MaxAttempts
}

func (e *entry) prune(cutoff time.Time) {
	i := 0
	for i < len(e.attempts) && !e.attempts[i].After(cutoff) {
		i++
	}
	if i > 0 {
		e.attempts = append(e.attempts[:0], e.attempts[i:]...)
	}
}

func (l *Limiter) maybeSweep(now time.Time) {
	l.opsSinceSweep++
	if l.opsSinceSweep < sweepEveryOps {
		return
	}
	l.sweepStale(now)
	l.opsSinceSweep = 0
}

func (l *Limiter) sweepStale(now time.Time) {
	for fk, e := range l.entries {
		e.prune(now.Add(-e.window))

		staleAge := e.window * staleMultiplier
		if staleAge < minStaleAge {
			staleAge = minStaleAge
		}
		if len(e.attempts) == 0 && !e.lastSeen.After(now.Add(-staleAge)) {
			delete(l.entries, fk)
		}
	}
}
