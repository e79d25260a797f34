package client

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the identity claims this service reads back out of a token.
// AuthUserMiddleware looks in extra_claims first, then the registered subject.
type Claims struct {
	ExtraClaims interface{} `json:"extra_claims,omitempty"`
	Email       string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator mints HS256 access tokens compatible with Verifier. Intended
// for local development and tests; production tokens come from the upstream
// identity provider.
type TokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
}

// NewTokenGenerator creates a new TokenGenerator
func NewTokenGenerator(secret, issuer, audience string) *TokenGenerator {
	return &TokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
	}
}

// GenerateToken creates a signed token for the given user ID with the given
// extra claims
func (g *TokenGenerator) GenerateToken(subject string, expiry time.Duration, extraClaims map[string]interface{}) (string, time.Time, error) {
	claims := Claims{
		ExtraClaims: extraClaims,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			NotBefore: jwt.NewNumericDate(time.Now().UTC().Add(-5 * time.Minute)),
			Issuer:    g.Issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{g.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed to sign JWT claims", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses and validates a token string
func (g *TokenGenerator) ParseToken(tokenStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(g.Secret), nil
	})
	if err != nil {
		return token, err
	}
	if !token.Valid {
		return token, fmt.Errorf("invalid token")
	}
	return token, nil
}
