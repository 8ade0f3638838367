package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/session"
)

const TokenTTL = 24 * time.Hour

// Tokens issues and verifies HS256 access tokens carrying the user's role, id and expiry.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret []byte, now func() time.Time) (Tokens, error) {
	if len(secret) == 0 {
		return Tokens{}, errors.New("token secret is required")
	}
	return Tokens{secret: secret, now: now}, nil
}

func (t Tokens) Issue(u domain.User) (string, error) {
	now := t.now()
	claims := session.Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t Tokens) Verify(token string) (session.Claims, error) {
	var claims session.Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return session.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return session.Claims{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}
