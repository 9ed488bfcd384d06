package services

import (
	"time"

	"denti-chat/domain/chat"
)

// Server-to-client payload shapes. Every frame carries a "type" field; the
// PayloadType methods feed dispatcher log context.

type MessagePayload struct {
	Type            string              `json:"type"`
	ConversationID  string              `json:"conversationId"`
	MessageID       string              `json:"messageId"`
	SenderKey       chat.ParticipantKey `json:"senderKey"`
	SenderName      string              `json:"senderName"`
	Content         string              `json:"content"`
	Timestamp       time.Time           `json:"timestamp"`
	MessageType     chat.MessageType    `json:"messageType"`
	ClinicID        string              `json:"clinicId"`
	ProfessionalSub string              `json:"professionalSub"`
	Message         chat.Message        `json:"message"`
}

func (p MessagePayload) PayloadType() string { return p.Type }

type AckPayload struct {
	Type           string     `json:"type"`
	MessageID      string     `json:"messageId,omitempty"`
	ConversationID string     `json:"conversationId"`
	Action         string     `json:"action,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

func (p AckPayload) PayloadType() string { return p.Type }

type HistoryItem struct {
	MessageID   string              `json:"messageId"`
	Timestamp   time.Time           `json:"timestamp"`
	SenderKey   chat.ParticipantKey `json:"senderKey"`
	SenderName  string              `json:"senderName"`
	Content     string              `json:"content"`
	MessageType chat.MessageType    `json:"messageType"`
}

type HistoryPayload struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversationId"`
	Items          []HistoryItem `json:"items"`
	NextKey        *string       `json:"nextKey"`
}

func (p HistoryPayload) PayloadType() string { return p.Type }

type ConversationSummary struct {
	ConversationID string    `json:"conversationId"`
	RecipientName  string    `json:"recipientName"`
	LastMessage    string    `json:"lastMessage"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadCount    int       `json:"unreadCount"`
}

type ConversationsPayload struct {
	Type          string                `json:"type"`
	Conversations []ConversationSummary `json:"conversations"`
}

func (p ConversationsPayload) PayloadType() string { return p.Type }

type SearchPayload struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversationId"`
	Items          []HistoryItem `json:"items"`
}

func (p SearchPayload) PayloadType() string { return p.Type }

type ErrorPayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (p ErrorPayload) PayloadType() string { return p.Type }

func NewErrorPayload(message string) ErrorPayload {
	return ErrorPayload{Type: "error", Error: message}
}

func newMessagePayload(message chat.Message, clinicID, professionalSub string) MessagePayload {
	return MessagePayload{
		Type:            "message",
		ConversationID:  message.ConversationID,
		MessageID:       message.ID,
		SenderKey:       message.SenderKey,
		SenderName:      message.SenderName,
		Content:         message.Content,
		Timestamp:       message.CreatedAt,
		MessageType:     message.Type,
		ClinicID:        clinicID,
		ProfessionalSub: professionalSub,
		Message:         message,
	}
}

func historyItems(messages []chat.Message) []HistoryItem {
	items := make([]HistoryItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, HistoryItem{
			MessageID:   m.ID,
			Timestamp:   m.CreatedAt,
			SenderKey:   m.SenderKey,
			SenderName:  m.SenderName,
			Content:     m.Content,
			MessageType: m.Type,
		})
	}
	return items
}
