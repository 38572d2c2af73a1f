package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizationCode ties a principal, an application and a set of requested
// scopes to a single-use random code string. Once redeemed or expired it can
// never be redeemed again; redemption is implemented as an atomic delete in
// the repository layer.
type AuthorizationCode struct {
	Code          string
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	Scopes        []string
	RedirectURI   string
	CreatedAt     time.Time
}

// ExpiresAt derives the expiry from the issue time and the configured
// code lifetime.
func (c *AuthorizationCode) ExpiresAt(lifetime time.Duration) time.Time {
	return c.CreatedAt.Add(lifetime)
}

// IsExpired reports whether the code is past its derived expiry at now.
func (c *AuthorizationCode) IsExpired(now time.Time, lifetime time.Duration) bool {
	return now.After(c.ExpiresAt(lifetime))
}
