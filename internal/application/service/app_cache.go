package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
)

// applicationCache fronts application-by-code lookups. Entries expire after a
// minute so registration changes propagate quickly; singleflight collapses
// concurrent loads for the same code into one repository call.
type applicationCache struct {
	repo  repository.ApplicationRepository
	cache *gocache.Cache
	group singleflight.Group
}

func newApplicationCache(repo repository.ApplicationRepository) *applicationCache {
	return &applicationCache{
		repo:  repo,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

func (c *applicationCache) GetByCode(ctx context.Context, code string) (*models.Application, error) {
	if cached, ok := c.cache.Get(code); ok {
		return cached.(*models.Application), nil
	}

	loaded, err, _ := c.group.Do(code, func() (any, error) {
		app, err := c.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(code, app)
		return app, nil
	})
	if err != nil {
		return nil, err
	}
	return loaded.(*models.Application), nil
}

// Invalidate drops a cached entry; called after registration updates.
func (c *applicationCache) Invalidate(code string) {
	c.cache.Delete(code)
}
