// Package service orchestrates the credential lifecycle operations behind the
// request pipeline: application registration, the authorization-code flow,
// refresh-token rotation and 2FA enrollment/verification.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/identra/identra/internal/application/dto"
	"github.com/identra/identra/internal/application/pipeline"
	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	domainservice "github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

// AuthAppService is the application facade. Every public operation runs
// through the stage chain assembled at construction time.
type AuthAppService struct {
	users  repository.UserRepository
	apps   repository.ApplicationRepository
	roles  repository.ApplicationRoleRepository
	scopes repository.ScopeRepository

	appCache *applicationCache

	codes     domainservice.AuthCodeService
	tokens    domainservice.TokenService
	claims    domainservice.ClaimsService
	totp      domainservice.TOTPService
	passwords domainservice.PasswordService
	random    domainservice.SecretService

	chain  []pipeline.Stage
	tracer trace.Tracer
	cfg    config.Config
	log    logger.Logger

	// now is injectable for tests.
	now func() time.Time
}

// Deps bundles the collaborators the facade needs.
type Deps struct {
	Users  repository.UserRepository
	Apps   repository.ApplicationRepository
	Roles  repository.ApplicationRoleRepository
	Scopes repository.ScopeRepository

	Codes     domainservice.AuthCodeService
	Tokens    domainservice.TokenService
	Claims    domainservice.ClaimsService
	TOTP      domainservice.TOTPService
	Passwords domainservice.PasswordService
	Random    domainservice.SecretService

	Authorizer domainservice.Authorizer
	Metrics    domainservice.Metrics
	AuditSink  pipeline.AuditSink
	Tracer     trace.Tracer
	Log        logger.Logger
	Config     config.Config
}

// NewAuthAppService assembles the facade and its fixed stage chain:
// containment, authorization gate, validation, audit, performance.
func NewAuthAppService(d Deps) *AuthAppService {
	log := d.Log.WithComponent("auth_app_service")

	s := &AuthAppService{
		users:     d.Users,
		apps:      d.Apps,
		roles:     d.Roles,
		scopes:    d.Scopes,
		appCache:  newApplicationCache(d.Apps),
		codes:     d.Codes,
		tokens:    d.Tokens,
		claims:    d.Claims,
		totp:      d.TOTP,
		passwords: d.Passwords,
		random:    d.Random,
		tracer:    d.Tracer,
		cfg:       d.Config,
		log:       log,
		now:       time.Now,
	}
	s.chain = []pipeline.Stage{
		&pipeline.RecoveryStage{Log: log},
		&pipeline.AuthorizationStage{Authorizer: d.Authorizer},
		&pipeline.ValidationStage{},
		&pipeline.AuditStage{Log: log, Sink: d.AuditSink},
		&pipeline.PerformanceStage{Log: log, Metrics: d.Metrics, Threshold: constants.SlowOperationThreshold},
	}
	return s
}

// WithClock overrides the time source. Test hook.
func (s *AuthAppService) WithClock(now func() time.Time) *AuthAppService {
	s.now = now
	return s
}

func (s *AuthAppService) execute(ctx context.Context, kind constants.OperationKind, principal *models.User, input any, h pipeline.Handler) (any, error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, string(kind))
		defer span.End()
	}
	req := &pipeline.Request{Kind: kind, Principal: principal, Input: input}
	return pipeline.Compose(h, s.chain...)(ctx, req)
}

// ================================================================================
// Application Registration
// ================================================================================

// CreateApplication registers a client. Applications must carry at least one
// redirect URI; a secret of the configured length is generated when none is
// supplied.
func (s *AuthAppService) CreateApplication(ctx context.Context, principal *models.User, in dto.CreateApplicationInput) (*dto.ApplicationResponse, error) {
	result, err := s.execute(ctx, constants.OpCreateApplication, principal, in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		app := &models.Application{
			ID:                            uuid.New(),
			Code:                          in.Code,
			DisplayName:                   in.DisplayName,
			RedirectUris:                  in.RedirectUris,
			Secrets:                       in.Secrets,
			AccessTokenExpirationMinutes:  in.AccessTokenExpirationMinutes,
			RefreshTokenExpirationMinutes: in.RefreshTokenExpirationMinutes,
			RequireTwoFactor:              in.RequireTwoFactor,
			AuthorizationType:             constants.AuthorizationType(in.AuthorizationType),
		}
		if app.AuthorizationType == "" {
			app.AuthorizationType = constants.AuthorizationTypeCode
		}
		if len(app.Secrets) == 0 {
			secret, err := s.random.GenerateRandomString(s.cfg.OAuth.SecretLength)
			if err != nil {
				return nil, err
			}
			app.Secrets = []string{secret}
		}
		if fields := app.Validate(); len(fields) > 0 {
			return nil, errors.ErrValidationFailed(fields...)
		}
		if err := s.apps.Add(ctx, app); err != nil {
			return nil, err
		}
		s.appCache.Invalidate(app.Code)

		return &dto.ApplicationResponse{
			ID:           app.ID.String(),
			Code:         app.Code,
			DisplayName:  app.DisplayName,
			RedirectUris: app.RedirectUris,
			Secrets:      app.Secrets,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.ApplicationResponse), nil
}

// ================================================================================
// Authorization-Code Flow
// ================================================================================

// Authorize issues a single-use authorization code for the authenticated
// principal towards the requesting application.
func (s *AuthAppService) Authorize(ctx context.Context, principal *models.User, in dto.AuthorizeInput) (*dto.AuthorizeResponse, error) {
	result, err := s.execute(ctx, constants.OpAuthorize, principal, in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		app, err := s.appCache.GetByCode(ctx, in.ClientCode)
		if err != nil {
			return nil, err
		}
		if app.RequireTwoFactor && principal.AuthMethod != constants.AuthMethodTOTP {
			return nil, errors.ErrForbidden(principal.Name(), constants.OpAuthorize)
		}

		code, err := s.codes.IssueCode(ctx, principal, app, in.Scopes, in.RedirectURI, s.now())
		if err != nil {
			return nil, err
		}
		return &dto.AuthorizeResponse{Code: code.Code, RedirectURI: code.RedirectURI}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.AuthorizeResponse), nil
}

// ExchangeCode redeems an authorization code for an access/refresh token
// pair. The code is consumed exactly once.
func (s *AuthAppService) ExchangeCode(ctx context.Context, in dto.ExchangeCodeInput) (*dto.TokenResponse, error) {
	result, err := s.execute(ctx, constants.OpExchangeCode, models.Anonymous(), in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		app, err := s.authenticateClient(ctx, in.ClientCode, in.ClientSecret, constants.OpExchangeCode)
		if err != nil {
			return nil, err
		}

		redemption, err := s.codes.RedeemCode(ctx, in.Code, s.now())
		if err != nil {
			return nil, err
		}
		// A code issued to one application cannot be exchanged by another.
		if redemption.Application.ID != app.ID {
			return nil, errors.ErrNotFound("authorization code")
		}

		return s.issueTokenPair(ctx, redemption.User, app, redemption.Scopes)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.TokenResponse), nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued.
func (s *AuthAppService) Refresh(ctx context.Context, in dto.RefreshInput) (*dto.TokenResponse, error) {
	result, err := s.execute(ctx, constants.OpRefreshToken, models.Anonymous(), in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		app, err := s.authenticateClient(ctx, in.ClientCode, in.ClientSecret, constants.OpRefreshToken)
		if err != nil {
			return nil, err
		}

		record, err := s.tokens.RedeemRefreshToken(ctx, in.RefreshToken, s.now())
		if err != nil {
			return nil, err
		}
		if record.ApplicationID != app.ID {
			return nil, errors.ErrNotFound("token")
		}

		user, err := s.users.GetByID(ctx, record.UserID)
		if err != nil {
			return nil, err
		}
		return s.issueTokenPair(ctx, user, app, record.Scopes)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.TokenResponse), nil
}

// PasswordGrant authenticates a resource owner directly with login and
// password and issues a token pair. Only applications registered for the
// password grant may use it, and every failure mode answers Forbidden so the
// endpoint does not reveal which credential was wrong.
func (s *AuthAppService) PasswordGrant(ctx context.Context, in dto.PasswordGrantInput) (*dto.TokenResponse, error) {
	result, err := s.execute(ctx, constants.OpPasswordGrant, models.Anonymous(), in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		app, err := s.authenticateClient(ctx, in.ClientCode, in.ClientSecret, constants.OpPasswordGrant)
		if err != nil {
			return nil, err
		}
		if app.AuthorizationType != constants.AuthorizationTypePassword {
			return nil, errors.ErrForbidden(in.ClientCode, constants.OpPasswordGrant)
		}
		// The password grant cannot present a second factor.
		if app.RequireTwoFactor {
			return nil, errors.ErrForbidden(in.ClientCode, constants.OpPasswordGrant)
		}

		user, err := s.users.GetByLogin(ctx, in.Username)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.ErrForbidden(in.Username, constants.OpPasswordGrant)
			}
			return nil, err
		}
		if !user.IsActive() || user.PasswordHash == "" {
			return nil, errors.ErrForbidden(in.Username, constants.OpPasswordGrant)
		}
		if !s.passwords.Verify(in.Password, user.PasswordHash) {
			return nil, errors.ErrForbidden(in.Username, constants.OpPasswordGrant)
		}

		return s.issueTokenPair(ctx, user, app, in.Scopes)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.TokenResponse), nil
}

func (s *AuthAppService) authenticateClient(ctx context.Context, clientCode, clientSecret string, kind constants.OperationKind) (*models.Application, error) {
	app, err := s.appCache.GetByCode(ctx, clientCode)
	if err != nil {
		return nil, err
	}
	if !app.HasSecret(clientSecret) {
		return nil, errors.ErrForbidden(clientCode, kind)
	}
	return app, nil
}

func (s *AuthAppService) issueTokenPair(ctx context.Context, user *models.User, app *models.Application, scopes []string) (*dto.TokenResponse, error) {
	now := s.now()

	roles, err := s.roles.ListByUser(ctx, user.ID, app.ID)
	if err != nil {
		return nil, err
	}
	claims := s.claims.BuildClaims(user, app, roles, scopes)

	accessToken, record, err := s.tokens.IssueAccessToken(ctx, user, app, claims, scopes, now)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(ctx, user, app, scopes, now)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Value,
		TokenType:    "Bearer",
		ExpiresIn:    int64(record.ExpiresAt.Sub(now).Seconds()),
	}, nil
}

// ================================================================================
// Two-Factor Enrollment
// ================================================================================

// ProvisionTwoFactor enrolls the principal in TOTP. An existing secret is
// reused; enrollment never regenerates one implicitly.
func (s *AuthAppService) ProvisionTwoFactor(ctx context.Context, principal *models.User) (*dto.ProvisionTOTPResponse, error) {
	result, err := s.execute(ctx, constants.OpProvisionTOTP, principal, dto.ProvisionTOTPInput{}, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		secret := principal.TOTPSecret
		if secret == "" {
			generated, err := s.totp.GenerateSecret()
			if err != nil {
				return nil, err
			}
			principal.TOTPSecret = generated
			if err := s.users.Update(ctx, principal); err != nil {
				return nil, err
			}
			secret = generated
		}

		provisioning, err := s.totp.Provision(principal.Login, secret, s.cfg.TOTP.PixelsPerModule)
		if err != nil {
			return nil, err
		}
		return &dto.ProvisionTOTPResponse{
			ManualKey:            provisioning.ManualKey,
			ProvisioningURI:      provisioning.ProvisioningURI,
			ProvisioningImageURL: provisioning.ProvisioningImageURL,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.ProvisionTOTPResponse), nil
}

// VerifyTwoFactor validates a submitted PIN. A valid PIN upgrades the
// principal's authentication method to TOTP.
func (s *AuthAppService) VerifyTwoFactor(ctx context.Context, principal *models.User, in dto.VerifyTOTPInput) (*dto.VerifyTOTPResponse, error) {
	result, err := s.execute(ctx, constants.OpVerifyTOTP, principal, in, func(ctx context.Context, _ *pipeline.Request) (any, error) {
		if principal.TOTPSecret == "" {
			return nil, errors.ErrValidationFailed(errors.FieldError{
				Field: "Pin", Message: "principal is not enrolled in two-factor authentication",
			})
		}

		valid := s.totp.ValidatePin(principal.TOTPSecret, in.Pin, s.now())
		if valid && principal.AuthMethod != constants.AuthMethodTOTP {
			principal.AuthMethod = constants.AuthMethodTOTP
			if err := s.users.Update(ctx, principal); err != nil {
				return nil, err
			}
		}
		return &dto.VerifyTOTPResponse{Valid: valid}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.VerifyTOTPResponse), nil
}

// ================================================================================
// Health
// ================================================================================

// CheckStorage confirms storage reachability by loading the distinguished
// "All" scope. Any failure is reported as unhealthy by the caller.
func (s *AuthAppService) CheckStorage(ctx context.Context) error {
	_, err := s.scopes.GetScopeByName(ctx, constants.ScopeAll)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	return nil
}
