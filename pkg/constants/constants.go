// Package constants defines shared enumerations and default values for the
// Identra identity provider.
package constants

import "time"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeExpired          ErrorCode = "expired"
	ErrCodeDataAccess       ErrorCode = "data_access_error"
	ErrCodeInvalidToken     ErrorCode = "invalid_token"
	ErrCodeInternal         ErrorCode = "internal_error"
)

// ================================================================================
// Token Types
// ================================================================================

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// ================================================================================
// Authorization
// ================================================================================

// AuthorizationType is the grant flow a registered application is allowed to use.
type AuthorizationType string

const (
	AuthorizationTypeCode     AuthorizationType = "authorization_code"
	AuthorizationTypePassword AuthorizationType = "password"
)

// AuthenticationMethod records how a principal proved its identity.
type AuthenticationMethod string

const (
	AuthMethodNone     AuthenticationMethod = "none"
	AuthMethodPassword AuthenticationMethod = "password"
	AuthMethodTOTP     AuthenticationMethod = "totp"
)

// OperationKind names an inbound operation for authorization and audit purposes.
type OperationKind string

const (
	OpCreateApplication OperationKind = "application.create"
	OpAuthorize         OperationKind = "oauth.authorize"
	OpExchangeCode      OperationKind = "oauth.exchange_code"
	OpRefreshToken      OperationKind = "oauth.refresh_token"
	OpPasswordGrant     OperationKind = "oauth.password_grant"
	OpProvisionTOTP     OperationKind = "totp.provision"
	OpVerifyTOTP        OperationKind = "totp.verify"
	OpPurgeExpiredCodes OperationKind = "maintenance.purge_expired_codes"
)

// ClaimAdmin gates administrative operations such as application provisioning.
const ClaimAdmin = "identra:admin"

// ScopeAll is the distinguished scope used by the liveness probe to confirm
// storage reachability.
const ScopeAll = "All"

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for values stored in a request context.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyPrincipal ContextKey = "principal"
)

// ================================================================================
// Defaults
// ================================================================================

const (
	// DefaultCodeLength is the length of generated authorization codes.
	DefaultCodeLength = 32
	// DefaultSecretLength is the length of auto-generated application secrets.
	DefaultSecretLength = 48
	// DefaultRefreshTokenLength is the length of opaque refresh tokens.
	DefaultRefreshTokenLength = 64

	// DefaultAccessTokenExpirationMinutes applies when an application does not
	// override its access token lifetime.
	DefaultAccessTokenExpirationMinutes = 30
	// DefaultRefreshTokenExpirationMinutes applies when an application does not
	// override its refresh token lifetime.
	DefaultRefreshTokenExpirationMinutes = 60 * 24 * 14
	// DefaultCodeExpirationMinutes bounds the lifetime of authorization codes.
	DefaultCodeExpirationMinutes = 5

	// DefaultMinPasswordLength is the minimum accepted plaintext password length.
	DefaultMinPasswordLength = 8

	// DefaultTOTPSecretLength is the length of generated TOTP secrets in bytes.
	DefaultTOTPSecretLength = 20
	// DefaultTOTPToleranceMinutes is the accepted clock drift on either side of
	// the submitted PIN's time step.
	DefaultTOTPToleranceMinutes = 5
	// DefaultTOTPPixelsPerModule controls the rendered size of provisioning QR codes.
	DefaultTOTPPixelsPerModule = 4
	// TOTPStepSeconds is the RFC 6238 time step.
	TOTPStepSeconds = 30
	// TOTPDigits is the number of digits in a generated PIN.
	TOTPDigits = 6

	// DefaultPurgeInterval is the cadence of the expired-code sweep. The value is
	// deliberately a tunable; deployments with tight code lifetimes should lower it.
	DefaultPurgeInterval = 10 * time.Hour

	// SlowOperationThreshold is the elapsed time past which the performance
	// stage emits a slow-operation warning.
	SlowOperationThreshold = 500 * time.Millisecond
)
