package errors

import "fmt"

var (
	ErrInvalidParticipantKey = fmt.Errorf("invalid participant key")
	ErrUnauthorized          = fmt.Errorf("caller is not a party to this conversation")
	ErrEmptyContent          = fmt.Errorf("message content is empty")
	ErrContentTooLong        = fmt.Errorf("message content exceeds the maximum length")
	ErrMissingParticipants   = fmt.Errorf("clinicId and professionalSub are required")
	ErrUnknownAction         = fmt.Errorf("unknown action")
	ErrUnknownEventType      = fmt.Errorf("unknown event type")
	ErrConnectionGone        = fmt.Errorf("connection gone")
	ErrNoClinicID            = fmt.Errorf("clinic caller has no resolvable clinic id")
	ErrConversationNotFound  = fmt.Errorf("conversation not found")
	ErrInvalidToken          = fmt.Errorf("invalid identity token")
)
