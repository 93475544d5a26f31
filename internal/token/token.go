// Package token issues and validates the signed identity tokens that bind a
// username to a connection. The chat core never touches tokens; it only sees
// the resolved identity.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "dj-chat-channels"

// DefaultTTL is how long an issued identity token stays valid.
const DefaultTTL = 24 * time.Hour

// Signer signs and validates identity tokens with an HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer. A zero ttl falls back to DefaultTTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed token for a username.
func (s *Signer) Generate(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate parses a token string and returns the username it binds.
func (s *Signer) Validate(tokenString string) (string, error) {
	t, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || !t.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
