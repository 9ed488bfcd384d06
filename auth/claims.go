// Package auth verifies identity tokens and normalizes the provider's raw
// claim shapes into the single UserClaims variant the rest of the system
// consumes. Handlers never see provider-specific claims.
package auth

import (
	"denti-chat/domain/chat"
	"denti-chat/errors"
)

// Role classifies a caller using the marketplace group taxonomy.
type Role string

const (
	RoleClinic       Role = "clinic"
	RoleProfessional Role = "professional"
)

// UserClaims is the normalized identity attached to a registered
// connection. It is the source of truth for every later authorization
// decision on that connection.
type UserClaims struct {
	Subject  string
	Role     Role
	ClinicID string
	Name     string
}

// ParticipantKey addresses the caller in registry, aggregate and message
// records.
func (c UserClaims) ParticipantKey() chat.ParticipantKey {
	if c.Role == RoleClinic {
		return chat.ClinicKey(c.ClinicID)
	}
	return chat.ProfessionalKey(c.Subject)
}

// IsPartyTo reports whether the caller is one of the two named parties. A
// clinic caller must match the clinic id, a professional the subject; the
// request body never escalates beyond what the connection registered with.
func (c UserClaims) IsPartyTo(clinicID, professionalSub string) bool {
	switch c.Role {
	case RoleClinic:
		return c.ClinicID == clinicID
	case RoleProfessional:
		return c.Subject == professionalSub
	default:
		return false
	}
}

// normalize builds UserClaims from raw token claims. The fallback clinic id
// comes from an explicit connect parameter and is only consulted when the
// token itself carries none; a clinic-typed caller with no resolvable
// clinic id is rejected.
func normalize(raw *tokenClaims, fallbackClinicID string) (UserClaims, error) {
	role := classify(raw.Groups)

	claims := UserClaims{
		Subject: raw.Subject,
		Role:    role,
		Name:    raw.Name,
	}

	if role == RoleClinic {
		claims.ClinicID = raw.ClinicID
		if claims.ClinicID == "" {
			claims.ClinicID = fallbackClinicID
		}
		if claims.ClinicID == "" {
			return UserClaims{}, errors.ErrNoClinicID
		}
	}
	return claims, nil
}

// classify maps provider groups onto the closed role set. Anything not
// clinic-tagged is treated as a professional, the marketplace default.
func classify(groups []string) Role {
	for _, g := range groups {
		switch g {
		case "clinics", "clinic-admins", "clinic-staff":
			return RoleClinic
		}
	}
	return RoleProfessional
}
