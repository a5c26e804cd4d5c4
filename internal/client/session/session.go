// Package session holds the caller's identity on the client side. Tokens are
// decoded without verification: the backend is the only party that checks the
// signature, the client only needs the subject and expiry.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSubject = errors.New("session: token has no subject")
	ErrExpired   = errors.New("session: token expired")
)

// Session is either authenticated (Token set) or Unauthenticated.
type Session struct {
	Token     string
	UserID    string
	Role      string
	Name      string
	ExpiresAt time.Time
}

// Unauthenticated is the session of an anonymous visitor.
var Unauthenticated = Session{}

// FromToken decodes an access token into a Session.
func FromToken(token string, now time.Time) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Unauthenticated, fmt.Errorf("session: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Unauthenticated, ErrNoSubject
	}

	s := Session{Token: token, UserID: sub}
	s.Role, _ = claims["role"].(string)
	s.Name, _ = claims["name"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if s.Expired(now) {
		return Unauthenticated, ErrExpired
	}
	return s, nil
}

// Authenticated reports whether s carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry never expire on the client.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session may use admin listings.
func (s Session) IsAdmin() bool {
	return s.Role == "admin"
}
