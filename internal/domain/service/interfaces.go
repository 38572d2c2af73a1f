// Package service implements the domain services of the credential lifecycle:
// secret and token factories, password hashing, claim derivation, TOTP, and
// the authorization-code state machine.
package service

import (
	"context"
	"time"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
)

// SecretService generates cryptographically random strings used as client
// secrets, authorization codes and refresh tokens.
type SecretService interface {
	GenerateRandomString(length int) (string, error)
}

// SigningSecretSource provides the ordered list of currently trusted signing
// secrets. New tokens are signed with the first entry; verification accepts
// any entry, which allows key rotation without invalidating recent tokens.
type SigningSecretSource interface {
	Secrets(ctx context.Context) ([]string, error)
}

// TokenService issues and validates access and refresh tokens.
type TokenService interface {
	// IssueAccessToken builds and signs a token asserting the principal's
	// identity and claims towards the given application.
	IssueAccessToken(ctx context.Context, user *models.User, app *models.Application, claims []models.Claim, scopes []string, now time.Time) (string, *models.Token, error)

	// IssueRefreshToken mints an opaque refresh token bound server-side to the
	// principal and application.
	IssueRefreshToken(ctx context.Context, user *models.User, app *models.Application, scopes []string, now time.Time) (*models.Token, error)

	// RedeemRefreshToken consumes a refresh token exactly once and returns its
	// server-side record. A second redemption fails with NotFound.
	RedeemRefreshToken(ctx context.Context, value string, now time.Time) (*models.Token, error)

	// ValidateToken verifies an access token against every trusted secret.
	// A token past its expiry is reported Expired regardless of which secret
	// signed it; unverifiable tokens fail with InvalidToken.
	ValidateToken(ctx context.Context, tokenString string, now time.Time) (*models.AccessTokenClaims, error)
}

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// ClaimsService derives the claim set for a principal. Pure and deterministic.
type ClaimsService interface {
	BuildClaims(user *models.User, app *models.Application, roles []*models.ApplicationRole, scopes []string) []models.Claim
}

// TOTPProvisioning is the enrollment material handed to the user.
type TOTPProvisioning struct {
	ManualKey            string
	ProvisioningURI      string
	ProvisioningImageURL string
}

// TOTPService provisions and validates time-based one-time passwords.
type TOTPService interface {
	// GenerateSecret mints a fresh shared secret for 2FA enrollment.
	GenerateSecret() (string, error)

	// Provision derives the enrollment material for an account and secret.
	// It persists nothing; storing the secret is the caller's responsibility.
	Provision(account, secretKey string, pixelsPerModule int) (*TOTPProvisioning, error)

	// ValidatePin checks a submitted PIN against the secret, accepting codes
	// within the configured clock-drift tolerance on either side of now.
	// The tolerance is applied at time-step granularity (30 seconds).
	ValidatePin(secretKey, submittedPin string, now time.Time) bool
}

// Redemption is the result of consuming an authorization code.
type Redemption struct {
	User        *models.User
	Application *models.Application
	Scopes      []string
}

// AuthCodeService drives the authorization-code state machine:
// Issued -> Redeemed or Issued -> Expired, both terminal.
type AuthCodeService interface {
	IssueCode(ctx context.Context, user *models.User, app *models.Application, scopes []string, redirectURI string, now time.Time) (*models.AuthorizationCode, error)
	RedeemCode(ctx context.Context, code string, now time.Time) (*Redemption, error)
	// PurgeExpired deletes codes issued before now minus the code lifetime.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Authorizer decides whether a principal may execute an operation kind.
// Implementations must be pure and safe for concurrent use.
type Authorizer interface {
	IsAllowed(kind constants.OperationKind, principal *models.User) bool
}
