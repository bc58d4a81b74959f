// Package hub tracks live client connections and fans messages out to them.
// It owns the only shared mutable connection state in the process; every
// lock here is narrow and never held across a network send.
package hub

import "sync"

// Conn is the transport-agnostic handle the hub operates on. Connections
// are compared by object identity; no explicit id is needed.
type Conn interface {
	// SendRaw queues one pre-serialized frame for delivery.
	SendRaw(data []byte) error
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Registry is the live set of connections eligible for broadcast.
type Registry struct {
	mu    sync.RWMutex
	conns map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[Conn]struct{})}
}

func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

// Remove is idempotent: removing an absent connection is a no-op.
func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot returns a point-in-time copy of the membership so callers can
// iterate and send without holding the lock, tolerating concurrent removal.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}
