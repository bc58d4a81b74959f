package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"daily-chat/domain"
	apperrors "daily-chat/errors"
	"daily-chat/hub"

	"github.com/gorilla/websocket"
)

const (
	noticeInvalidFormat = "Invalid message format"
	noticeSlowDown      = "You're sending messages too quickly. Please slow down."
	noticeStoreFailure  = "Your message could not be saved. Please try again."
	reasonServerFull    = "Server full"
)

// ChatService is the inbound pipeline the handler hands raw frames to.
type ChatService interface {
	History() ([]domain.Message, error)
	Post(raw []byte) (domain.Message, error)
}

// Config bundles the transport knobs for one handler.
type Config struct {
	MaxConnections   int
	SendBufferSize   int
	WriteWait        time.Duration
	ReplayGraceDelay time.Duration
}

// Handler runs one client through Connecting, Accepted, Active and Closed:
// connection-limit check, registration, history replay, then the receive
// loop until the peer goes away.
type Handler struct {
	registry *hub.Registry
	chat     ChatService
	log      *slog.Logger
	cfg      Config
	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewHandler(registry *hub.Registry, chat ChatService, log *slog.Logger, cfg Config) *Handler {
	return &Handler{
		registry: registry,
		chat:     chat,
		log:      log,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			// The chat is an open room; origin policy is enforced by the
			// deployment, not the process.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	// Connecting -> Closed: refuse before any frame exchange when full.
	if h.registry.Count() >= h.cfg.MaxConnections {
		h.refuse(socket)
		return
	}

	// Connecting -> Accepted
	conn := NewConnection(socket, h.cfg.SendBufferSize, h.cfg.WriteWait)
	h.registry.Add(conn)
	defer func() {
		// Active -> Closed. Removal is idempotent; the broadcaster may
		// have pruned this connection already.
		h.registry.Remove(conn)
		_ = conn.Close()
	}()

	// Accepted -> Active: replay today's history to this client only.
	h.replay(conn)

	for {
		raw, err := conn.ReadRaw()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Client disconnected", "error", err)
			}
			return
		}
		h.handleFrame(conn, raw)
	}
}

// refuse closes a surplus connection with a policy-violation code and a
// distinct reason, never silently.
func (h *Handler) refuse(socket *websocket.Conn) {
	deadline := time.Now().Add(h.cfg.WriteWait)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reasonServerFull)
	_ = socket.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = socket.Close()
	h.log.Warn("Connection refused, server full", "connections", h.registry.Count())
}

// replay sends today's messages, oldest first, to the new connection. The
// short grace delay accommodates slow-starting clients; it is not a
// correctness requirement.
func (h *Handler) replay(conn *Connection) {
	if h.cfg.ReplayGraceDelay > 0 {
		time.Sleep(h.cfg.ReplayGraceDelay)
	}

	messages, err := h.chat.History()
	if err != nil {
		h.log.Error("History replay failed", "error", err)
		return
	}
	for _, msg := range messages {
		if err := h.sendFrame(conn, msg.ToFrame()); err != nil {
			return
		}
	}
}

// handleFrame runs one inbound frame through the pipeline and reports
// failures to the sender only. No inbound error closes the connection.
func (h *Handler) handleFrame(conn *Connection, raw []byte) {
	_, err := h.chat.Post(raw)
	switch {
	case err == nil:
		// The pipeline broadcast the persisted message to everyone,
		// including the sender.
	case errors.Is(err, apperrors.ErrMalformedPayload), errors.Is(err, apperrors.ErrEmptyMessage):
		h.notify(conn, noticeInvalidFormat)
	case errors.Is(err, apperrors.ErrRateLimited):
		h.notify(conn, noticeSlowDown)
	default:
		h.log.Error("Message persistence failed", "error", err)
		h.notify(conn, noticeStoreFailure)
	}
}

func (h *Handler) notify(conn *Connection, text string) {
	_ = h.sendFrame(conn, domain.SystemFrame(text, h.now()))
}

func (h *Handler) sendFrame(conn *Connection, frame domain.OutboundFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.SendRaw(data)
}
