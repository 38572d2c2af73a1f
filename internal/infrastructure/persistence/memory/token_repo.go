package memory

import (
	"context"
	"sync"
	"time"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// TokenRepository stores token records in memory. Refresh tokens are keyed by
// their opaque value; access-token metadata is keyed by JTI.
type TokenRepository struct {
	mu      sync.Mutex
	byValue map[string]*models.Token
	byJTI   map[string]*models.Token
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		byValue: make(map[string]*models.Token),
		byJTI:   make(map[string]*models.Token),
	}
}

func (r *TokenRepository) Save(ctx context.Context, token *models.Token) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	r.byJTI[token.JTI] = &stored
	if token.Value != "" {
		r.byValue[token.Value] = &stored
	}
	return nil
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (*models.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byValue[value]
	if !ok {
		return nil, errors.ErrNotFound("token")
	}
	found := *stored
	return &found, nil
}

func (r *TokenRepository) Delete(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byValue[value]
	if !ok {
		return errors.ErrNotFound("token")
	}
	delete(r.byValue, value)
	delete(r.byJTI, stored.JTI)
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for jti, token := range r.byJTI {
		if token.ExpiresAt.Before(cutoff) {
			delete(r.byJTI, jti)
			if token.Value != "" {
				delete(r.byValue, token.Value)
			}
			deleted++
		}
	}
	return deleted, nil
}
