package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

// Application is a registered client. It owns its redirect URIs and secrets
// outright; codes and tokens reference it by id only.
type Application struct {
	ID           uuid.UUID
	Code         string
	DisplayName  string
	RedirectUris []string
	Secrets      []string

	AccessTokenExpirationMinutes  int
	RefreshTokenExpirationMinutes int

	RequireTwoFactor  bool
	AuthorizationType constants.AuthorizationType
}

// Validate enforces the registration invariants. All failed rules are
// returned, not just the first.
func (a *Application) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(a.Code) == "" {
		fields = append(fields, errors.FieldError{Field: "Code", Message: "code is required"})
	}
	if strings.TrimSpace(a.DisplayName) == "" {
		fields = append(fields, errors.FieldError{Field: "DisplayName", Message: "display name is required"})
	}
	if len(a.RedirectUris) == 0 {
		fields = append(fields, errors.FieldError{Field: "RedirectUris", Message: "at least one redirect URI is required"})
	}
	for _, uri := range a.RedirectUris {
		if strings.TrimSpace(uri) == "" {
			fields = append(fields, errors.FieldError{Field: "RedirectUris", Message: "redirect URIs must not be blank"})
			break
		}
	}
	switch a.AuthorizationType {
	case constants.AuthorizationTypeCode, constants.AuthorizationTypePassword:
	default:
		fields = append(fields, errors.FieldError{Field: "AuthorizationType", Message: "unsupported authorization type"})
	}
	return fields
}

// HasRedirectURI reports whether the given callback is registered.
func (a *Application) HasRedirectURI(uri string) bool {
	for _, registered := range a.RedirectUris {
		if registered == uri {
			return true
		}
	}
	return false
}

// HasSecret reports whether the presented secret matches any configured one.
func (a *Application) HasSecret(secret string) bool {
	for _, s := range a.Secrets {
		if s == secret {
			return true
		}
	}
	return false
}

// AccessTokenExpiration returns the configured lifetime, falling back to the
// service default when the application does not override it.
func (a *Application) AccessTokenExpiration() int {
	if a.AccessTokenExpirationMinutes > 0 {
		return a.AccessTokenExpirationMinutes
	}
	return constants.DefaultAccessTokenExpirationMinutes
}

// RefreshTokenExpiration returns the configured lifetime, falling back to the
// service default when the application does not override it.
func (a *Application) RefreshTokenExpiration() int {
	if a.RefreshTokenExpirationMinutes > 0 {
		return a.RefreshTokenExpirationMinutes
	}
	return constants.DefaultRefreshTokenExpirationMinutes
}
