// Package models holds the domain entities of the credential lifecycle:
// principals, applications, authorization codes, tokens, claims and scopes.
package models

import (
	"github.com/google/uuid"

	"github.com/identra/identra/pkg/constants"
)

// SystemUserID identifies the distinguished system principal used by
// background jobs. It is allowed to execute every operation.
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User is a principal known to the identity provider. Users are never hard
// deleted; the Deleted flag soft-deletes them.
type User struct {
	ID           uuid.UUID
	Login        string
	DisplayName  string
	AuthMethod   constants.AuthenticationMethod
	PasswordHash string
	// TOTPSecret is set once at 2FA enrollment and never regenerated implicitly.
	TOTPSecret string
	Blocked    bool
	Deleted    bool

	// Claims are the resolved claims for this principal, loaded alongside the
	// user by the repository layer.
	Claims []Claim
}

// Anonymous returns the empty principal representing an unauthenticated caller.
func Anonymous() *User {
	return &User{AuthMethod: constants.AuthMethodNone}
}

// System returns the distinguished system principal.
func System() *User {
	return &User{
		ID:          SystemUserID,
		Login:       "system",
		DisplayName: "System",
		AuthMethod:  constants.AuthMethodNone,
	}
}

// IsAnonymous reports whether the principal carries no identity.
func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == uuid.Nil
}

// IsSystem reports whether the principal is the system user.
func (u *User) IsSystem() bool {
	return u != nil && u.ID == SystemUserID
}

// IsActive reports whether the principal may authenticate at all.
func (u *User) IsActive() bool {
	return u != nil && !u.Blocked && !u.Deleted
}

// Name returns a printable identity for audit and authorization messages.
func (u *User) Name() string {
	switch {
	case u.IsAnonymous():
		return "anonymous"
	case u.Login != "":
		return u.Login
	default:
		return u.ID.String()
	}
}

// HasClaim reports whether a resolved claim with the given name is present.
func (u *User) HasClaim(name string) bool {
	if u == nil {
		return false
	}
	for _, c := range u.Claims {
		if c.Name == name {
			return true
		}
	}
	return false
}
