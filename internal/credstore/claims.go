package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no stored token")

// TokenClaims is what can be read from a JWT bearer token without the
// signing key. It is informational only.
type TokenClaims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the stored token without verifying its signature.
func (s *Store) Claims(ctx context.Context) (*TokenClaims, error) {
	token, ok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}

func ParseClaims(raw string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	} else if role, ok := claims["user_type"].(string); ok {
		out.Role = role
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
