// Package ws carries the WebSocket transport: a write-serialized
// connection wrapper and the per-connection handler state machine.
package ws

import (
	"context"
	"sync"
	"time"

	apperrors "daily-chat/errors"

	"github.com/gorilla/websocket"
)

// Connection wraps a websocket.Conn behind a single writer goroutine.
// Gorilla permits at most one concurrent writer, so every outbound frame
// (replay, broadcast, system notice) is queued on sendCh and written by
// writeLoop alone.
type Connection struct {
	conn      *websocket.Conn
	sendCh    chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	writeWait time.Duration
}

func NewConnection(conn *websocket.Conn, bufferSize int, writeWait time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:      conn,
		sendCh:    make(chan []byte, bufferSize),
		ctx:       ctx,
		cancel:    cancel,
		writeWait: writeWait,
	}
	go c.writeLoop()
	return c
}

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				c.cancel()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// SendRaw queues one frame without blocking. A closed connection or a full
// send buffer reports failure so the broadcaster can prune the recipient;
// a consumer that cannot drain its buffer is treated as gone.
func (c *Connection) SendRaw(data []byte) error {
	select {
	case <-c.ctx.Done():
		return apperrors.ErrConnectionClosed
	default:
	}

	select {
	case c.sendCh <- data:
		return nil
	case <-c.ctx.Done():
		return apperrors.ErrConnectionClosed
	default:
		return apperrors.ErrWriteTimeout
	}
}

// ReadRaw blocks until the next inbound text frame.
func (c *Connection) ReadRaw() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close stops the writer and closes the socket. Safe to call repeatedly,
// from the handler and the broadcaster alike.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}
