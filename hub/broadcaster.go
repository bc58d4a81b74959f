package hub

import (
	"encoding/json"
	"log/slog"
	"time"

	"daily-chat/domain"
)

// Broadcaster delivers frames to every registered connection and prunes
// the ones that fail. Delivery is best effort: no acknowledgement, no
// retry, and no cross-recipient ordering guarantee.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
	now      func() time.Time
}

func NewBroadcaster(registry *Registry, log *slog.Logger, clock func() time.Time) *Broadcaster {
	if clock == nil {
		clock = time.Now
	}
	return &Broadcaster{registry: registry, log: log, now: clock}
}

// Broadcast serializes the frame once and attempts delivery to a snapshot
// of the registry. Failed recipients are collected during the sweep and
// removed only after it completes, so the membership is never mutated
// while being traversed.
func (b *Broadcaster) Broadcast(frame domain.OutboundFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		b.log.Error("Broadcast marshal failed", "error", err)
		return
	}

	var failed []Conn
	for _, c := range b.registry.Snapshot() {
		if err := c.SendRaw(data); err != nil {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		b.registry.Remove(c)
		_ = c.Close()
	}
	if len(failed) > 0 {
		b.log.Warn("Pruned unreachable connections", "count", len(failed))
	}
}

// System broadcasts a server notice to every connection.
func (b *Broadcaster) System(text string) {
	b.Broadcast(domain.SystemFrame(text, b.now()))
}
