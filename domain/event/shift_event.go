// Package event models the marketplace notifications consumed by the
// event-to-message bridge. Events are delivered at least once by the
// external bus and are not persisted here; only the chat message derived
// from them is durable.
package event

import (
	"fmt"
	"strconv"

	"denti-chat/domain/chat"
	"denti-chat/errors"
)

// EventType is a closed enum. Anything outside of it fails the invocation
// so the bus retries instead of silently dropping.
type EventType string

const (
	ShiftApplied   EventType = "shift-applied"
	InviteAccepted EventType = "invite-accepted"
	ShiftCancelled EventType = "shift-cancelled"
	ShiftScheduled EventType = "shift-scheduled"
)

// ShiftDetails carries the optional shift context attached to an event.
type ShiftDetails struct {
	Role string   `json:"role"`
	Date string   `json:"date"`
	Rate *float64 `json:"rate,omitempty"`
}

// ShiftEvent is the normalized detail payload of a marketplace event.
type ShiftEvent struct {
	Type            EventType     `json:"eventType"`
	ClinicID        string        `json:"clinicId"`
	ProfessionalSub string        `json:"professionalSub"`
	Shift           *ShiftDetails `json:"shiftDetails,omitempty"`
}

// Envelope mirrors the bus delivery format.
type Envelope struct {
	Detail ShiftEvent `json:"detail"`
}

// Validate rejects events that cannot be routed to a conversation. A
// rejected event propagates an error to the bus for redelivery.
func (e ShiftEvent) Validate() error {
	if e.ClinicID == "" || e.ProfessionalSub == "" {
		return errors.ErrMissingParticipants
	}
	return nil
}

// SenderKey maps the event type to the party the system message speaks for.
func (e ShiftEvent) SenderKey() (chat.ParticipantKey, error) {
	switch e.Type {
	case ShiftApplied, InviteAccepted:
		return chat.ProfessionalKey(e.ProfessionalSub), nil
	case ShiftCancelled, ShiftScheduled:
		return chat.ClinicKey(e.ClinicID), nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownEventType, e.Type)
	}
}

// Render produces the canned system message content for the event.
func (e ShiftEvent) Render() (string, error) {
	var role, date, rate string
	if e.Shift != nil {
		role = e.Shift.Role
		date = e.Shift.Date
		if e.Shift.Rate != nil {
			rate = " at $" + strconv.FormatFloat(*e.Shift.Rate, 'f', -1, 64) + "/hr"
		}
	}

	switch e.Type {
	case ShiftApplied:
		return fmt.Sprintf("Shift applied: %s on %s%s. Confirm?", role, date, rate), nil
	case InviteAccepted:
		return fmt.Sprintf("Invite accepted: %s on %s%s.", role, date, rate), nil
	case ShiftCancelled:
		return fmt.Sprintf("Shift cancelled: %s on %s.", role, date), nil
	case ShiftScheduled:
		return fmt.Sprintf("Shift scheduled: %s on %s%s. Questions? Reply here!", role, date, rate), nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownEventType, e.Type)
	}
}
