package service

import (
	"context"
	"time"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

var _ AuthCodeService = (*authCodeService)(nil)

type authCodeService struct {
	codes   repository.AuthorizationCodeRepository
	users   repository.UserRepository
	apps    repository.ApplicationRepository
	random  SecretService
	cfg     config.OAuthConfig
	log     logger.Logger
	metrics Metrics
}

// NewAuthCodeService wires the authorization-code lifecycle.
func NewAuthCodeService(
	codes repository.AuthorizationCodeRepository,
	users repository.UserRepository,
	apps repository.ApplicationRepository,
	random SecretService,
	cfg config.OAuthConfig,
	log logger.Logger,
	metrics Metrics,
) AuthCodeService {
	return &authCodeService{
		codes:   codes,
		users:   users,
		apps:    apps,
		random:  random,
		cfg:     cfg,
		log:     log.WithComponent("authcode_service"),
		metrics: metrics,
	}
}

func (s *authCodeService) IssueCode(
	ctx context.Context,
	user *models.User,
	app *models.Application,
	scopes []string,
	redirectURI string,
	now time.Time,
) (*models.AuthorizationCode, error) {
	if !app.HasRedirectURI(redirectURI) {
		return nil, errors.ErrValidationFailed(errors.FieldError{
			Field:   "RedirectUri",
			Message: "redirect URI is not registered for this application",
		})
	}

	value, err := s.random.GenerateRandomString(s.cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	code := &models.AuthorizationCode{
		Code:          value,
		UserID:        user.ID,
		ApplicationID: app.ID,
		Scopes:        scopes,
		RedirectURI:   redirectURI,
		CreatedAt:     now,
	}
	if err := s.codes.Add(ctx, code); err != nil {
		return nil, err
	}

	s.metrics.CodeIssued()
	return code, nil
}

func (s *authCodeService) RedeemCode(ctx context.Context, code string, now time.Time) (*Redemption, error) {
	stored, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		if errors.IsNotFound(err) {
			s.metrics.CodeRedeemed("not_found")
		}
		return nil, err
	}

	if stored.IsExpired(now, s.cfg.CodeExpiration()) {
		s.metrics.CodeRedeemed("expired")
		return nil, errors.ErrExpired("authorization code")
	}

	// The atomic delete is the only path that consumes a code. If a concurrent
	// redemption got here first the delete reports NotFound and this attempt
	// loses.
	if err := s.codes.Delete(ctx, code); err != nil {
		if errors.IsNotFound(err) {
			s.metrics.CodeRedeemed("lost_race")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.GetByID(ctx, stored.ApplicationID)
	if err != nil {
		return nil, err
	}

	s.metrics.CodeRedeemed("redeemed")
	return &Redemption{User: user, Application: app, Scopes: stored.Scopes}, nil
}

func (s *authCodeService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.cfg.CodeExpiration())
	deleted, err := s.codes.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.metrics.PurgeSweep(0, true)
		return 0, err
	}
	if deleted > 0 {
		s.log.Info(ctx, "purged expired authorization codes", logger.Fields{"deleted": deleted, "cutoff": cutoff})
	}
	s.metrics.PurgeSweep(deleted, false)
	return deleted, nil
}
