package services

import (
	"log/slog"
	"time"

	"daily-chat/domain"
	apperrors "daily-chat/errors"
	"daily-chat/moderation"
	"daily-chat/ratelimit"
	"daily-chat/repositories"
)

// Broadcaster is the fan-out side of the pipeline.
type Broadcaster interface {
	Broadcast(frame domain.OutboundFrame)
}

// Indexer receives persisted messages for full-text search. Optional.
type Indexer interface {
	Add(msg domain.Message) error
}

type IChatService interface {
	Post(raw []byte) (domain.Message, error)
	History() ([]domain.Message, error)
	TodayKey() string
}

// ChatService runs every inbound frame through the same pipeline:
// sanitize, censor, rate limit, persist, index, broadcast. The sender
// receives its own message via the broadcast like everyone else, keeping
// a single source of truth for order and timestamps.
type ChatService struct {
	log         *slog.Logger
	messages    repositories.IMessageRepository
	limiter     *ratelimit.Limiter
	moderator   *moderation.Moderator
	broadcaster Broadcaster
	index       Indexer
	now         func() time.Time
}

func NewChatService(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	limiter *ratelimit.Limiter,
	moderator *moderation.Moderator,
	broadcaster Broadcaster,
	index Indexer,
	clock func() time.Time,
) *ChatService {
	if clock == nil {
		clock = time.Now
	}
	return &ChatService{
		log:         log,
		messages:    messages,
		limiter:     limiter,
		moderator:   moderator,
		broadcaster: broadcaster,
		index:       index,
		now:         clock,
	}
}

// Post validates a raw frame and, when accepted, persists and broadcasts
// it. The returned errors are sentinels the transport maps to sender-only
// notices. A rate-limited or rejected message is never persisted and never
// broadcast; a message that fails to persist is not broadcast either.
func (s *ChatService) Post(raw []byte) (domain.Message, error) {
	msg, err := domain.Sanitize(raw, s.now())
	if err != nil {
		return domain.Message{}, err
	}

	msg.Text = s.moderator.Censor(msg.Text)

	// Identity is the declared sender name; see the limiter package docs.
	if s.limiter.Check(msg.User) {
		return domain.Message{}, apperrors.ErrRateLimited
	}

	if err := s.messages.Store(msg); err != nil {
		return domain.Message{}, err
	}

	if s.index != nil {
		if err := s.index.Add(msg); err != nil {
			s.log.Warn("Search indexing failed", "id", msg.ID, "error", err)
		}
	}

	s.broadcaster.Broadcast(msg.ToFrame())
	return msg, nil
}

// History returns today's messages, oldest first.
func (s *ChatService) History() ([]domain.Message, error) {
	return s.messages.GetByDay(s.TodayKey())
}

// TodayKey is the current day partition key in server-local time.
func (s *ChatService) TodayKey() string {
	return domain.DayKeyFor(s.now())
}
