package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
)

// Claims is the part of the token payload the client reads. It is never verified here: the backend stays
// authoritative, the claims only drive local decisions such as routing.
type Claims struct {
	Role domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Expired reports whether the token had expired at now. Tokens without an expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// DecodeClaims reads the payload of token without checking its signature.
func DecodeClaims(token string) (Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Claims{}, fmt.Errorf("decode token payload: %w", err)
	}
	return c, nil
}

// Claims decodes the current token.
func (s *Session) Claims() (Claims, error) {
	token, err := s.AccessToken()
	if err != nil {
		return Claims{}, err
	}
	return DecodeClaims(token)
}
