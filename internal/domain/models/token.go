package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identra/identra/pkg/constants"
)

// Token is the server-side record of an issued credential. Access tokens are
// self-contained signed artifacts; refresh tokens are opaque random strings
// bound to the issuing principal and application through this record.
type Token struct {
	JTI           string
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	TokenType     constants.TokenType
	// Value is the opaque string for refresh tokens; empty for access tokens,
	// whose value is the signed JWT itself.
	Value     string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the token is past its expiry at now.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// AccessTokenClaims is the claim set embedded in signed access tokens.
type AccessTokenClaims struct {
	jwt.RegisteredClaims

	ApplicationID string            `json:"client_id"`
	Claims        map[string]string `json:"identra_claims,omitempty"`
	Scopes        []string          `json:"scope,omitempty"`
}
