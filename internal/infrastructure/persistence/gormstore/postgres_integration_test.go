//go:build integration

package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

func openPostgres(t *testing.T) *CodeRepository {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("identra"),
		tcpostgres.WithUsername("identra"),
		tcpostgres.WithPassword("identra"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := Open(config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "identra",
		Password: "identra",
		Database: "identra",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	return NewCodeRepository(db)
}

func TestPostgres_CodeRedemptionExactlyOnce(t *testing.T) {
	codes := openPostgres(t)
	ctx := context.Background()

	code := &models.AuthorizationCode{
		Code:          uuid.NewString(),
		UserID:        uuid.New(),
		ApplicationID: uuid.New(),
		Scopes:        []string{constants.ScopeAll},
		RedirectURI:   "https://client.example/cb",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, codes.Add(ctx, code))

	// Race many redemption attempts: the row-count check admits exactly one.
	const attempts = 16
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() { results <- codes.Delete(ctx, code.Code) }()
	}

	var wins int
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			wins++
		} else {
			assert.True(t, errors.IsNotFound(err))
		}
	}
	assert.Equal(t, 1, wins)
}
