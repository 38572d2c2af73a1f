// Package memory implements every repository contract on guarded maps.
// It is the default backend for development and the reference implementation
// the tests run against.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// CodeRepository stores authorization codes in memory. Delete holds the lock
// across the lookup and removal, which gives the atomic check-and-delete the
// redemption invariant needs.
type CodeRepository struct {
	mu    sync.Mutex
	codes map[string]*models.AuthorizationCode
}

var _ repository.AuthorizationCodeRepository = (*CodeRepository)(nil)

func NewCodeRepository() *CodeRepository {
	return &CodeRepository{codes: make(map[string]*models.AuthorizationCode)}
}

func (r *CodeRepository) Add(ctx context.Context, code *models.AuthorizationCode) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *code
	r.codes[code.Code] = &stored
	return nil
}

func (r *CodeRepository) GetByCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[code]
	if !ok {
		return nil, errors.ErrNotFound("authorization code")
	}
	found := *stored
	return &found, nil
}

func (r *CodeRepository) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code]; !ok {
		return errors.ErrNotFound("authorization code")
	}
	delete(r.codes, code)
	return nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, code := range r.codes {
		if code.CreatedAt.Before(cutoff) {
			delete(r.codes, key)
			deleted++
		}
	}
	return deleted, nil
}
