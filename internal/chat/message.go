package chat

import (
	"time"

	"github.com/google/uuid"
)

// MessageType indicates the category of a chat message.
type MessageType string

const (
	TypeNarration         MessageType = "NARRATION"
	TypePlayer            MessageType = "PLAYER"
	TypeAction            MessageType = "ACTION"
	TypeSystemResult      MessageType = "SYSTEM_RESULT"
	TypeEventNotification MessageType = "EVENT_NOTIFICATION"
	TypeSystem            MessageType = "SYSTEM"
)

// Visibility controls who may read a message.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Message is one immutable entry in the session's conversation. A private
// message is readable only by the characters named in Recipients.
type Message struct {
	ID         string      `json:"id"`
	Type       MessageType `json:"type"`
	Source     string      `json:"source"`
	SourceID   string      `json:"source_id,omitempty"`
	Visibility Visibility  `json:"visibility"`
	Recipients []string    `json:"recipients,omitempty"`
	Content    string      `json:"content"`
	RoundID    int         `json:"round_id"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewMessage builds a public message for the given round.
func NewMessage(msgType MessageType, source, sourceID, content string, round int) Message {
	return Message{
		ID:         uuid.NewString(),
		Type:       msgType,
		Source:     source,
		SourceID:   sourceID,
		Visibility: VisibilityPublic,
		Content:    content,
		RoundID:    round,
		Timestamp:  time.Now(),
	}
}

// NewPrivateMessage builds a message visible only to the named recipients.
func NewPrivateMessage(msgType MessageType, source, sourceID, content string, round int, recipients ...string) Message {
	m := NewMessage(msgType, source, sourceID, content, round)
	m.Visibility = VisibilityPrivate
	m.Recipients = recipients
	return m
}

// VisibleTo reports whether the reader may see this message. Public
// messages are visible to everyone; private ones only to listed
// recipients and the sender.
func (m Message) VisibleTo(readerID string) bool {
	if m.Visibility != VisibilityPrivate {
		return true
	}
	if readerID != "" && readerID == m.SourceID {
		return true
	}
	for _, r := range m.Recipients {
		if r == readerID {
			return true
		}
	}
	return false
}
