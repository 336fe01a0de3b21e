package repo

import (
	"sync"
	"time"
)

const (
	rateLimitMaxAttempts = 5
	rateLimitWindow      = time.Hour
	rateLimitBlockFor    = time.Hour
)

// MemoryRateLimiter is the in-process stand-in for the store-side
// check_rate_limit procedure: fixed window per (ip, action), with a
// temporary block once the window is exhausted.
type MemoryRateLimiter struct {
	mu           sync.Mutex
	maxAttempts  int
	window       time.Duration
	blockFor     time.Duration
	attempts     map[string][]time.Time
	blockedUntil map[string]time.Time
	now          func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		maxAttempts:  rateLimitMaxAttempts,
		window:       rateLimitWindow,
		blockFor:     rateLimitBlockFor,
		attempts:     make(map[string][]time.Time),
		blockedUntil: make(map[string]time.Time),
		now:          time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(ip, action string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ip + "|" + action
	now := l.now()

	if until, ok := l.blockedUntil[key]; ok {
		if now.Before(until) {
			return false, nil
		}
		delete(l.blockedUntil, key)
	}

	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if now.Sub(at) < l.window {
			recent = append(recent, at)
		}
	}
	if len(recent) >= l.maxAttempts {
		l.attempts[key] = recent
		l.blockedUntil[key] = now.Add(l.blockFor)
		return false, nil
	}
	l.attempts[key] = append(recent, now)
	return true, nil
}
