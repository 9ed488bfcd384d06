// Package chat contains the core concepts of the messaging system:
// participant addressing, conversations and messages.
// No runtime, network or storage logic should be added here.
package chat

import (
	"sort"
	"strings"

	"denti-chat/errors"
)

const (
	clinicTag       = "clinic#"
	professionalTag = "prof#"
)

// ParticipantKey is the universal addressing scheme for both sides of the
// marketplace. It is either "clinic#<clinicId>" or "prof#<userSub>" and is
// stable for the lifetime of the underlying record.
type ParticipantKey string

func ClinicKey(clinicID string) ParticipantKey {
	return ParticipantKey(clinicTag + clinicID)
}

func ProfessionalKey(sub string) ParticipantKey {
	return ParticipantKey(professionalTag + sub)
}

// ParseParticipantKey rejects anything that does not carry exactly one of
// the two tags.
func ParseParticipantKey(s string) (ParticipantKey, error) {
	switch {
	case strings.HasPrefix(s, clinicTag) && len(s) > len(clinicTag):
		return ParticipantKey(s), nil
	case strings.HasPrefix(s, professionalTag) && len(s) > len(professionalTag):
		return ParticipantKey(s), nil
	default:
		return "", errors.ErrInvalidParticipantKey
	}
}

func (k ParticipantKey) IsClinic() bool {
	return strings.HasPrefix(string(k), clinicTag)
}

func (k ParticipantKey) IsProfessional() bool {
	return strings.HasPrefix(string(k), professionalTag)
}

// ID returns the raw identifier without its tag.
func (k ParticipantKey) ID() string {
	if k.IsClinic() {
		return strings.TrimPrefix(string(k), clinicTag)
	}
	return strings.TrimPrefix(string(k), professionalTag)
}

func (k ParticipantKey) String() string { return string(k) }

// ConversationID derives the deterministic conversation identifier for a
// pair of participants. The two keys are sorted before joining so the id is
// independent of which side initiated contact.
func ConversationID(a, b ParticipantKey) string {
	keys := []string{string(a), string(b)}
	sort.Strings(keys)
	return keys[0] + "|" + keys[1]
}
