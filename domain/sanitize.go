package domain

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "daily-chat/errors"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// AnonymousUser replaces an absent or empty sender name.
const AnonymousUser = "Anonymous"

// Sanitize parses a raw inbound frame and normalizes it into a Message.
// The sender name is capped at MaxUserLength runes, the text at
// MaxContentLength runes and trimmed of surrounding whitespace.
// It returns ErrMalformedPayload when the frame is not valid JSON and
// ErrEmptyMessage when nothing remains after trimming.
//
// The clock is passed in so CreatedAt and DayKey are stamped from the
// same instant; Sanitize has no other side effect.
func Sanitize(raw []byte, now time.Time) (Message, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Message{}, apperrors.ErrMalformedPayload
	}

	user := truncateRunes(frame.User, MaxUserLength)
	if user == "" {
		user = AnonymousUser
	}

	text := strings.TrimSpace(truncateRunes(frame.Text, MaxContentLength))
	if text == "" {
		return Message{}, apperrors.ErrEmptyMessage
	}

	return Message{
		ID:        uuid.New(),
		User:      user,
		Text:      text,
		CreatedAt: now,
		DayKey:    DayKeyFor(now),
		Lang:      detectLang(text),
	}, nil
}

func detectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
