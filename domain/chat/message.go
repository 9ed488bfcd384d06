package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes ordinary user messages from system messages
// synthesized out of marketplace events.
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
)

// MaxContentLength bounds user-provided message content. System messages are
// rendered from fixed templates and are not subject to it.
const MaxContentLength = 1000

// Message is an immutable chat event inside one conversation.
type Message struct {
	ID             string         `json:"messageId"`
	ConversationID string         `json:"conversationId"`
	SenderKey      ParticipantKey `json:"senderKey"`
	SenderName     string         `json:"senderName"`
	Content        string         `json:"content"`
	Type           MessageType    `json:"messageType"`
	Lang           string         `json:"lang,omitempty"`
	CreatedAt      time.Time      `json:"timestamp"`
}

// NewMessageID builds an id from wall-clock milliseconds plus a random
// suffix. Ids sort approximately chronologically without a coordinator;
// the suffix breaks ties between concurrent senders.
func NewMessageID(at time.Time) string {
	return fmt.Sprintf("%013d-%s", at.UnixMilli(), uuid.NewString()[:8])
}
