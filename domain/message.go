// Package domain contains core concepts of the chat system.
// This file defines Message records and day partitioning rules.
// Messages are immutable once created and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DayKeyLayout partitions messages per calendar day for the daily reset.
	DayKeyLayout = "2006-01-02"

	MaxUserLength    = 50
	MaxContentLength = 500
)

// Message represents an immutable chat record.
type Message struct {
	ID        uuid.UUID `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// DayKey is derived exactly once from CreatedAt, at creation time.
	// The reset worker deletes by this key, so it must never be recomputed
	// even when deletion happens shortly after midnight.
	DayKey string `json:"day_key"`
	// Lang is the detected ISO-639-1 language code, empty when unknown.
	Lang string `json:"lang,omitempty"`
	// UserID links the message to an authenticated account when known.
	UserID string `json:"user_id,omitempty"`
}

// DayKeyFor computes the calendar-day partition key in server-local time.
func DayKeyFor(t time.Time) string {
	return t.Format(DayKeyLayout)
}
