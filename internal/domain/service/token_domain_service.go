package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

var _ TokenService = (*tokenDomainService)(nil)

type tokenDomainService struct {
	repo    repository.TokenRepository
	random  SecretService
	source  SigningSecretSource
	cfg     config.OAuthConfig
	log     logger.Logger
	metrics Metrics
}

// NewTokenDomainService wires the token factory. Signing secrets come from
// the source as an ordered list: index zero signs, every entry verifies.
func NewTokenDomainService(
	repo repository.TokenRepository,
	random SecretService,
	source SigningSecretSource,
	cfg config.OAuthConfig,
	log logger.Logger,
	metrics Metrics,
) TokenService {
	return &tokenDomainService{
		repo:    repo,
		random:  random,
		source:  source,
		cfg:     cfg,
		log:     log.WithComponent("token_service"),
		metrics: metrics,
	}
}

func (s *tokenDomainService) IssueAccessToken(
	ctx context.Context,
	user *models.User,
	app *models.Application,
	claims []models.Claim,
	scopes []string,
	now time.Time,
) (string, *models.Token, error) {
	secrets, err := s.trustedSecrets(ctx)
	if err != nil {
		return "", nil, err
	}

	jti := uuid.NewString()
	expiresAt := now.Add(time.Duration(app.AccessTokenExpiration()) * time.Minute)

	claimMap := make(map[string]string, len(claims))
	for _, c := range claims {
		claimMap[c.Name] = c.Value
	}

	tokenClaims := models.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ApplicationID: app.ID.String(),
		Claims:        claimMap,
		Scopes:        scopes,
	}

	// Always sign with the primary secret; previous secrets are verify-only.
	signed, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims).SignedString([]byte(secrets[0]))
	if signErr != nil {
		s.log.Error(ctx, "failed to sign access token", signErr, logger.Fields{"user_id": user.ID})
		return "", nil, errors.ErrInternal(signErr)
	}

	record := &models.Token{
		JTI:           jti,
		UserID:        user.ID,
		ApplicationID: app.ID,
		TokenType:     constants.TokenTypeAccess,
		Scopes:        scopes,
		IssuedAt:      now,
		ExpiresAt:     expiresAt,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return "", nil, err
	}

	s.metrics.TokenIssued(string(constants.TokenTypeAccess))
	return signed, record, nil
}

func (s *tokenDomainService) IssueRefreshToken(
	ctx context.Context,
	user *models.User,
	app *models.Application,
	scopes []string,
	now time.Time,
) (*models.Token, error) {
	value, err := s.random.GenerateRandomString(s.cfg.RefreshTokenLength)
	if err != nil {
		return nil, err
	}

	record := &models.Token{
		JTI:           uuid.NewString(),
		UserID:        user.ID,
		ApplicationID: app.ID,
		TokenType:     constants.TokenTypeRefresh,
		Value:         value,
		Scopes:        scopes,
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Duration(app.RefreshTokenExpiration()) * time.Minute),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.TokenIssued(string(constants.TokenTypeRefresh))
	return record, nil
}

func (s *tokenDomainService) RedeemRefreshToken(ctx context.Context, value string, now time.Time) (*models.Token, error) {
	record, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if record.IsExpired(now) {
		return nil, errors.ErrExpired("refresh token")
	}
	// The delete is the consumption point; losing the race means someone else
	// already redeemed it.
	if err := s.repo.Delete(ctx, value); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *tokenDomainService) ValidateToken(ctx context.Context, tokenString string, now time.Time) (*models.AccessTokenClaims, error) {
	secrets, err := s.trustedSecrets(ctx)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var lastErr error
	for _, secret := range secrets {
		claims := &models.AccessTokenClaims{}
		token, parseErr := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if parseErr != nil {
			lastErr = parseErr
			continue
		}
		if !token.Valid {
			lastErr = jwt.ErrSignatureInvalid
			continue
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now) {
			return claims, errors.ErrExpired("access token")
		}
		return claims, nil
	}

	// Expiry is reported even when no trusted secret verifies the signature.
	unverified := &models.AccessTokenClaims{}
	if _, _, parseErr := jwt.NewParser().ParseUnverified(tokenString, unverified); parseErr == nil {
		if unverified.ExpiresAt != nil && unverified.ExpiresAt.Time.Before(now) {
			return nil, errors.ErrExpired("access token")
		}
	}

	return nil, errors.ErrInvalidToken(lastErr)
}

func (s *tokenDomainService) trustedSecrets(ctx context.Context) ([]string, error) {
	secrets, err := s.source.Secrets(ctx)
	if err != nil {
		return nil, err
	}
	if len(secrets) == 0 || secrets[0] == "" {
		return nil, errors.ErrInternal(fmt.Errorf("no signing secret configured"))
	}
	return secrets, nil
}
