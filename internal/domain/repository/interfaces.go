// Package repository defines the persistence contracts consumed by the core.
// Implementations live under internal/infrastructure/persistence and must be
// safe for concurrent use; every operation honors context cancellation and
// surfaces backend failures as DataAccess errors.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/domain/models"
)

// UserRepository stores principals.
type UserRepository interface {
	Add(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// ApplicationRepository stores registered client applications.
type ApplicationRepository interface {
	Add(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByCode(ctx context.Context, code string) (*models.Application, error)
}

// ApplicationRoleRepository stores roles scoped to an application.
type ApplicationRoleRepository interface {
	Add(ctx context.Context, role *models.ApplicationRole) error
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.ApplicationRole, error)
	ListByUser(ctx context.Context, userID, applicationID uuid.UUID) ([]*models.ApplicationRole, error)
}

// AuthorizationCodeRepository stores single-use authorization codes.
//
// Delete is the redemption primitive: it must atomically remove the code and
// report NotFound when the code was already consumed, so that concurrent
// redemption attempts succeed at most once.
type AuthorizationCodeRepository interface {
	Add(ctx context.Context, code *models.AuthorizationCode) error
	GetByCode(ctx context.Context, code string) (*models.AuthorizationCode, error)
	Delete(ctx context.Context, code string) error
	// DeleteExpired removes all codes issued before cutoff and returns the
	// number removed. Deleting already-gone rows is idempotent.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRepository stores server-side token records (refresh tokens and
// access-token metadata).
type TokenRepository interface {
	Save(ctx context.Context, token *models.Token) error
	GetByValue(ctx context.Context, value string) (*models.Token, error)
	// Delete consumes a refresh token; like authorization codes, rotation
	// relies on the delete being atomic.
	Delete(ctx context.Context, value string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScopeRepository stores named permission grants.
type ScopeRepository interface {
	Add(ctx context.Context, scope *models.Scope) error
	GetScopeByName(ctx context.Context, name string) (*models.Scope, error)
}

// ClaimRepository stores claims attached to principals.
type ClaimRepository interface {
	Add(ctx context.Context, userID uuid.UUID, claim *models.Claim) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Claim, error)
}
