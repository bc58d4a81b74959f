package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"daily-chat/domain"
	apperrors "daily-chat/errors"

	"github.com/stretchr/testify/require"
)

// fakeConn records delivered frames and can be told to fail.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) SendRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return apperrors.ErrConnectionClosed
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestRegistry_AddRemoveCount(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	a, b := &fakeConn{}, &fakeConn{}
	registry.Add(a)
	registry.Add(b)
	req.Equal(2, registry.Count())

	registry.Remove(a)
	req.Equal(1, registry.Count())

	// Idempotent removal
	registry.Remove(a)
	req.Equal(1, registry.Count())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	a, b := &fakeConn{}, &fakeConn{}
	registry.Add(a)
	registry.Add(b)

	snapshot := registry.Snapshot()
	registry.Remove(a)
	registry.Remove(b)

	req.Len(snapshot, 2)
	req.Equal(0, registry.Count())
}

func TestBroadcaster_DeliversOneCopyToEach(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, slog.Default(), nil)

	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		registry.Add(c)
	}

	broadcaster.Broadcast(domain.OutboundFrame{User: "alice", Text: "hello", Timestamp: "t"})

	for _, c := range conns {
		req.Equal(1, c.received())
	}

	var frame domain.OutboundFrame
	req.NoError(json.Unmarshal(conns[0].frames[0], &frame))
	req.Equal("alice", frame.User)
	req.Equal("hello", frame.Text)
}

func TestBroadcaster_PrunesFailingConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, slog.Default(), nil)

	healthy := []*fakeConn{{}, {}}
	broken := &fakeConn{fail: true}
	registry.Add(healthy[0])
	registry.Add(broken)
	registry.Add(healthy[1])

	broadcaster.Broadcast(domain.OutboundFrame{User: "bob", Text: "hi", Timestamp: "t"})

	req.Equal(2, registry.Count())
	req.True(broken.closed)
	for _, c := range healthy {
		req.Equal(1, c.received())
	}
}

func TestBroadcaster_SystemNotice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	at := time.Date(2026, 8, 28, 0, 2, 0, 0, time.UTC)
	broadcaster := NewBroadcaster(registry, slog.Default(), func() time.Time { return at })

	c := &fakeConn{}
	registry.Add(c)
	broadcaster.System("cleared for a new day")

	req.Equal(1, c.received())
	var frame domain.OutboundFrame
	req.NoError(json.Unmarshal(c.frames[0], &frame))
	req.Equal(domain.SystemUser, frame.User)
	req.Equal("cleared for a new day", frame.Text)
	req.Equal("2026-08-28T00:02:00Z", frame.Timestamp)
}
