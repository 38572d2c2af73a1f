package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// UserRepository stores principals in memory.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byLogin map[string]uuid.UUID
	claims  *ClaimRepository
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*models.User),
		byLogin: make(map[string]uuid.UUID),
	}
}

// WithClaims makes lookups resolve the principal's claims from the given
// repository, matching the behavior of the durable backends.
func (r *UserRepository) WithClaims(claims *ClaimRepository) *UserRepository {
	r.claims = claims
	return r
}

func (r *UserRepository) Add(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	r.byID[user.ID] = &stored
	if user.Login != "" {
		r.byLogin[user.Login] = user.ID
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	stored, ok := r.byID[id]
	if !ok {
		r.mu.RUnlock()
		return nil, errors.ErrNotFound("user")
	}
	found := *stored
	r.mu.RUnlock()

	if r.claims != nil {
		resolved, err := r.claims.ListByUser(ctx, id)
		if err != nil {
			return nil, err
		}
		found.Claims = nil
		for _, c := range resolved {
			found.Claims = append(found.Claims, *c)
		}
	}
	return &found, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	id, ok := r.byLogin[login]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrNotFound("user")
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return errors.ErrNotFound("user")
	}
	stored := *user
	r.byID[user.ID] = &stored
	if user.Login != "" {
		r.byLogin[user.Login] = user.ID
	}
	return nil
}
