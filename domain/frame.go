package domain

import "time"

// SystemUser is the sender name stamped on server-generated notices.
const SystemUser = "System"

// InboundFrame is the raw shape a client sends over the socket.
type InboundFrame struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// OutboundFrame is the single shape every server-to-client frame uses,
// chat messages and system notices alike.
type OutboundFrame struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ToFrame converts a stored message into its wire representation.
func (m Message) ToFrame() OutboundFrame {
	return OutboundFrame{
		User:      m.User,
		Text:      m.Text,
		Timestamp: m.CreatedAt.Format(time.RFC3339),
	}
}

// SystemFrame builds a server notice stamped with the given time.
func SystemFrame(text string, at time.Time) OutboundFrame {
	return OutboundFrame{
		User:      SystemUser,
		Text:      text,
		Timestamp: at.Format(time.RFC3339),
	}
}
