package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/infrastructure/persistence/redisstore"
	"github.com/identra/identra/pkg/errors"
)

func newRepo(t *testing.T) (*redisstore.CodeRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewCodeRepository(client, 5*time.Minute), srv
}

func code(value string, createdAt time.Time) *models.AuthorizationCode {
	return &models.AuthorizationCode{
		Code:          value,
		UserID:        uuid.New(),
		ApplicationID: uuid.New(),
		Scopes:        []string{"read"},
		RedirectURI:   "https://client.example/cb",
		CreatedAt:     createdAt,
	}
}

func TestRedisCodeRepository_Roundtrip(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	stored := code("abc", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Add(ctx, stored))

	got, err := repo.GetByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, stored.Code, got.Code)
	assert.Equal(t, stored.Scopes, got.Scopes)
	assert.Equal(t, stored.RedirectURI, got.RedirectURI)
}

func TestRedisCodeRepository_DeleteExactlyOnce(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, code("abc", time.Now())))
	require.NoError(t, repo.Delete(ctx, "abc"))

	err := repo.Delete(ctx, "abc")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRedisCodeRepository_GetMissing(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.GetByCode(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRedisCodeRepository_KeyOutlivesLogicalExpiry(t *testing.T) {
	repo, srv := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, code("abc", time.Now())))

	// Past the logical lifetime but inside the TTL backstop the code is still
	// observable, so the service layer can report Expired instead of NotFound.
	srv.FastForward(6 * time.Minute)
	_, err := repo.GetByCode(ctx, "abc")
	assert.NoError(t, err)

	srv.FastForward(2 * time.Hour)
	_, err = repo.GetByCode(ctx, "abc")
	assert.True(t, errors.IsNotFound(err))
}

func TestRedisCodeRepository_DeleteExpired(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Add(ctx, code("old-1", now.Add(-time.Hour))))
	require.NoError(t, repo.Add(ctx, code("old-2", now.Add(-time.Hour))))
	require.NoError(t, repo.Add(ctx, code("fresh", now)))

	deleted, err := repo.DeleteExpired(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = repo.GetByCode(ctx, "fresh")
	assert.NoError(t, err)
}
