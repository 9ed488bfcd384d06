package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"denti-chat/errors"
)

// tokenClaims is the raw shape carried inside the identity provider's JWT.
// Only the adapter in this package reads it.
type tokenClaims struct {
	Groups   []string `json:"cognito:groups"`
	ClinicID string   `json:"custom:clinicId"`
	Name     string   `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and produces normalized claims.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates the token signature and expiry, then
// normalizes the provider claims. fallbackClinicID is the optional connect
// parameter used when the token carries no clinic id.
func (v *Verifier) Verify(tokenString, fallbackClinicID string) (UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return UserClaims{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return UserClaims{}, errors.ErrInvalidToken
	}
	return normalize(claims, fallbackClinicID)
}

// GenerateToken signs a token with the given raw claim material. Used by
// tests and local tooling; production tokens come from the identity
// provider.
func GenerateToken(secret []byte, subject, name, clinicID string, groups []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Groups:   groups,
		ClinicID: clinicID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "denti-chat",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
