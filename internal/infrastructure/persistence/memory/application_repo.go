package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// ApplicationRepository stores registered applications in memory.
type ApplicationRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*models.Application
	byCode map[string]uuid.UUID
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{
		byID:   make(map[uuid.UUID]*models.Application),
		byCode: make(map[string]uuid.UUID),
	}
}

func (r *ApplicationRepository) Add(ctx context.Context, app *models.Application) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneApplication(app)
	r.byID[app.ID] = stored
	r.byCode[app.Code] = app.ID
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, errors.ErrNotFound("application")
	}
	return cloneApplication(stored), nil
}

func (r *ApplicationRepository) GetByCode(ctx context.Context, code string) (*models.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	id, ok := r.byCode[code]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrNotFound("application")
	}
	return r.GetByID(ctx, id)
}

// cloneApplication deep-copies the owned slices so callers cannot mutate the
// stored entity through the returned pointer.
func cloneApplication(app *models.Application) *models.Application {
	clone := *app
	clone.RedirectUris = append([]string(nil), app.RedirectUris...)
	clone.Secrets = append([]string(nil), app.Secrets...)
	return &clone
}
