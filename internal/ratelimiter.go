package internal

import (
	"sync"
	"time"
)

const (
	// authAttemptLimit bounds room-code guesses per client IP. The /auth
	// exchange runs a bcrypt compare on every attempt, so the limit also
	// caps how much CPU one address can burn.
	authAttemptLimit  = 10
	authAttemptWindow = time.Minute
)

// AttemptLimiter counts auth attempts per client IP inside a sliding window.
// Attempts never expire individually; stale ones are swept the next time the
// same key shows up.
type AttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewAuthLimiter() *AttemptLimiter {
	return &AttemptLimiter{attempts: make(map[string][]time.Time)}
}

// Allow records one attempt for key and reports whether it is within the
// window's budget. Denied attempts are not recorded, so a blocked client
// regains access as its earlier attempts age out.
func (l *AttemptLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-authAttemptWindow)
	l.mu.Lock()
	defer l.mu.Unlock()
	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) >= authAttemptLimit {
		l.attempts[key] = recent
		return false
	}
	l.attempts[key] = append(recent, now)
	return true
}
