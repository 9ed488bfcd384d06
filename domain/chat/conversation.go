package chat

import "time"

// PreviewLength bounds the last-message preview stored on the aggregate.
const PreviewLength = 100

// Conversation is the aggregate for one (clinic, professional) pair. There
// is exactly one per pair, keyed by the symmetric ConversationID, and it is
// never deleted in normal operation.
type Conversation struct {
	ID               string         `json:"conversationId"`
	ClinicKey        ParticipantKey `json:"clinicKey"`
	ProfessionalKey  ParticipantKey `json:"professionalKey"`
	ClinicName       string         `json:"clinicName"`
	ProfessionalName string         `json:"professionalName"`
	LastMessage      string         `json:"lastMessage"`
	LastMessageAt    time.Time      `json:"lastMessageAt"`
	UnreadClinic     int            `json:"unreadClinic"`
	UnreadPro        int            `json:"unreadPro"`
}

// UnreadFor returns the unread counter belonging to the given side.
func (c Conversation) UnreadFor(k ParticipantKey) int {
	if k.IsClinic() {
		return c.UnreadClinic
	}
	return c.UnreadPro
}

// Counterpart returns the other party's key, given one side of the pair.
func (c Conversation) Counterpart(k ParticipantKey) ParticipantKey {
	if k == c.ClinicKey {
		return c.ProfessionalKey
	}
	return c.ClinicKey
}

// CounterpartName resolves the display name of the other party.
func (c Conversation) CounterpartName(k ParticipantKey) string {
	if k == c.ClinicKey {
		return c.ProfessionalName
	}
	return c.ClinicName
}

// Preview truncates content on rune boundaries for the aggregate's
// last-message field.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}
