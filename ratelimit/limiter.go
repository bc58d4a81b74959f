// Package ratelimit bounds how fast a single sender identity may post.
// The identity is the client-declared name carried in each frame, not an
// authenticated principal, mirroring the chat's open-room behavior.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter keeps one sliding window of send timestamps per identity.
// It is safe for concurrent use by every connection handler.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	now     func() time.Time
	windows map[string]*senderWindow
}

type senderWindow struct {
	stamps   []time.Time
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing max sends per identity within the
// trailing window. A nil clock defaults to time.Now.
func NewLimiter(max int, window time.Duration, clock func() time.Time) *Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &Limiter{
		window:  window,
		max:     max,
		now:     clock,
		windows: make(map[string]*senderWindow),
	}
}

// Check reports whether the identity is currently limited.
// When not limited, the attempt is recorded; a limited attempt is not,
// so the window only ever holds accepted sends.
func (l *Limiter) Check(identity string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok {
		w = &senderWindow{stamps: make([]time.Time, 0, l.max)}
		l.windows[identity] = w
	}
	w.lastSeen = now

	// Drop expired timestamps from the front; the slice stays ordered.
	cutoff := now.Add(-l.window)
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.max {
		return true
	}

	w.stamps = append(w.stamps, now)
	return false
}

// Sweep evicts identities unseen for at least maxIdle and returns how many
// were removed. Without it the per-identity map grows for the process
// lifetime.
func (l *Limiter) Sweep(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, w := range l.windows {
		if w.lastSeen.Before(cutoff) {
			delete(l.windows, identity)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of identities currently held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
