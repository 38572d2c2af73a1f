// Package dto defines the operation inputs and outputs crossing the
// application boundary. Inputs declare their validation rules; the pipeline's
// validation stage aggregates every failed rule.
package dto

import (
	"strings"

	"github.com/identra/identra/pkg/errors"
)

// CreateApplicationInput registers a new client application.
type CreateApplicationInput struct {
	Code                          string   `json:"code"`
	DisplayName                   string   `json:"display_name"`
	RedirectUris                  []string `json:"redirect_uris"`
	Secrets                       []string `json:"secrets,omitempty"`
	AccessTokenExpirationMinutes  int      `json:"access_token_expiration_minutes,omitempty"`
	RefreshTokenExpirationMinutes int      `json:"refresh_token_expiration_minutes,omitempty"`
	RequireTwoFactor              bool     `json:"require_two_factor,omitempty"`
	AuthorizationType             string   `json:"authorization_type"`
}

func (in CreateApplicationInput) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(in.Code) == "" {
		fields = append(fields, errors.FieldError{Field: "Code", Message: "code is required"})
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		fields = append(fields, errors.FieldError{Field: "DisplayName", Message: "display name is required"})
	}
	if len(in.RedirectUris) == 0 {
		fields = append(fields, errors.FieldError{Field: "RedirectUris", Message: "at least one redirect URI is required"})
	}
	if in.AccessTokenExpirationMinutes < 0 {
		fields = append(fields, errors.FieldError{Field: "AccessTokenExpirationMinutes", Message: "must not be negative"})
	}
	if in.RefreshTokenExpirationMinutes < 0 {
		fields = append(fields, errors.FieldError{Field: "RefreshTokenExpirationMinutes", Message: "must not be negative"})
	}
	return fields
}

// AuthorizeInput is the authorization leg of the code flow.
type AuthorizeInput struct {
	ClientCode  string   `json:"client_id"`
	RedirectURI string   `json:"redirect_uri"`
	Scopes      []string `json:"scopes,omitempty"`
}

func (in AuthorizeInput) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(in.ClientCode) == "" {
		fields = append(fields, errors.FieldError{Field: "ClientCode", Message: "client id is required"})
	}
	if strings.TrimSpace(in.RedirectURI) == "" {
		fields = append(fields, errors.FieldError{Field: "RedirectUri", Message: "redirect URI is required"})
	}
	return fields
}

// ExchangeCodeInput is the token leg of the code flow.
type ExchangeCodeInput struct {
	Code         string `json:"code"`
	ClientCode   string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (in ExchangeCodeInput) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(in.Code) == "" {
		fields = append(fields, errors.FieldError{Field: "Code", Message: "authorization code is required"})
	}
	if strings.TrimSpace(in.ClientCode) == "" {
		fields = append(fields, errors.FieldError{Field: "ClientCode", Message: "client id is required"})
	}
	if in.ClientSecret == "" {
		fields = append(fields, errors.FieldError{Field: "ClientSecret", Message: "client secret is required"})
	}
	return fields
}

// RefreshInput exchanges a refresh token for a new token pair.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
	ClientCode   string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (in RefreshInput) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if in.RefreshToken == "" {
		fields = append(fields, errors.FieldError{Field: "RefreshToken", Message: "refresh token is required"})
	}
	if strings.TrimSpace(in.ClientCode) == "" {
		fields = append(fields, errors.FieldError{Field: "ClientCode", Message: "client id is required"})
	}
	if in.ClientSecret == "" {
		fields = append(fields, errors.FieldError{Field: "ClientSecret", Message: "client secret is required"})
	}
	return fields
}

// PasswordGrantInput authenticates a resource owner directly with login and
// password. Only applications registered for the password grant may use it.
type PasswordGrantInput struct {
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	ClientCode   string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
}

func (in PasswordGrantInput) Validate() []errors.FieldError {
	var fields []errors.FieldError
	if strings.TrimSpace(in.Username) == "" {
		fields = append(fields, errors.FieldError{Field: "Username", Message: "username is required"})
	}
	if in.Password == "" {
		fields = append(fields, errors.FieldError{Field: "Password", Message: "password is required"})
	}
	if strings.TrimSpace(in.ClientCode) == "" {
		fields = append(fields, errors.FieldError{Field: "ClientCode", Message: "client id is required"})
	}
	if in.ClientSecret == "" {
		fields = append(fields, errors.FieldError{Field: "ClientSecret", Message: "client secret is required"})
	}
	return fields
}

// ProvisionTOTPInput enrolls the calling principal in 2FA.
type ProvisionTOTPInput struct{}

// VerifyTOTPInput checks a submitted PIN.
type VerifyTOTPInput struct {
	Pin string `json:"pin"`
}

func (in VerifyTOTPInput) Validate() []errors.FieldError {
	if strings.TrimSpace(in.Pin) == "" {
		return []errors.FieldError{{Field: "Pin", Message: "pin is required"}}
	}
	return nil
}
