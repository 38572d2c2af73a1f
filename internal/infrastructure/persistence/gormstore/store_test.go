package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func openSqlite(t *testing.T) (users *UserRepository, apps *ApplicationRepository, roles *RoleRepository, scopes *ScopeRepository, claims *ClaimRepository, codes *CodeRepository, tokens *TokenRepository) {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "identra_test.db"),
	})
	require.NoError(t, err)
	return NewUserRepository(db), NewApplicationRepository(db), NewRoleRepository(db),
		NewScopeRepository(db), NewClaimRepository(db), NewCodeRepository(db), NewTokenRepository(db)
}

func TestUserRepository_RoundtripWithClaims(t *testing.T) {
	users, _, _, _, claims, _, _ := openSqlite(t)
	ctx := context.Background()

	user := &models.User{
		ID:          uuid.New(),
		Login:       "ada",
		DisplayName: "Ada",
		AuthMethod:  constants.AuthMethodPassword,
	}
	require.NoError(t, users.Add(ctx, user))
	require.NoError(t, claims.Add(ctx, user.ID, &models.Claim{Name: constants.ClaimAdmin, Value: "true"}))

	got, err := users.GetByLogin(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.HasClaim(constants.ClaimAdmin))

	got.TOTPSecret = "SECRET"
	got.AuthMethod = constants.AuthMethodTOTP
	require.NoError(t, users.Update(ctx, got))

	updated, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "SECRET", updated.TOTPSecret)
	assert.Equal(t, constants.AuthMethodTOTP, updated.AuthMethod)
}

func TestUserRepository_UpdatePersistsZeroValues(t *testing.T) {
	users, _, _, _, _, _, _ := openSqlite(t)
	ctx := context.Background()

	user := &models.User{
		ID:         uuid.New(),
		Login:      "ada",
		AuthMethod: constants.AuthMethodTOTP,
		TOTPSecret: "SECRET",
		Blocked:    true,
	}
	require.NoError(t, users.Add(ctx, user))

	user.Blocked = false
	user.TOTPSecret = ""
	user.AuthMethod = constants.AuthMethodNone
	require.NoError(t, users.Update(ctx, user))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Blocked, "clearing Blocked must persist")
	assert.Empty(t, got.TOTPSecret)
	assert.Equal(t, constants.AuthMethodNone, got.AuthMethod)

	// An update that changes nothing is still not a NotFound.
	require.NoError(t, users.Update(ctx, user))
}

func TestUserRepository_NotFound(t *testing.T) {
	users, _, _, _, _, _, _ := openSqlite(t)
	ctx := context.Background()

	_, err := users.GetByID(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))
	_, err = users.GetByLogin(ctx, "ghost")
	assert.True(t, errors.IsNotFound(err))
	err = users.Update(ctx, &models.User{ID: uuid.New()})
	assert.True(t, errors.IsNotFound(err))
}

func TestApplicationRepository_ListColumns(t *testing.T) {
	_, apps, _, _, _, _, _ := openSqlite(t)
	ctx := context.Background()

	app := &models.Application{
		ID:                uuid.New(),
		Code:              "analytics",
		DisplayName:       "Analytics",
		RedirectUris:      []string{"https://a.example/cb", "https://b.example/cb"},
		Secrets:           []string{"s1", "s2"},
		AuthorizationType: constants.AuthorizationTypeCode,
	}
	require.NoError(t, apps.Add(ctx, app))

	got, err := apps.GetByCode(ctx, "analytics")
	require.NoError(t, err)
	assert.Equal(t, app.RedirectUris, got.RedirectUris)
	assert.Equal(t, app.Secrets, got.Secrets)
	assert.True(t, got.HasRedirectURI("https://b.example/cb"))
	assert.True(t, got.HasSecret("s2"))
}

func TestRoleRepository_Membership(t *testing.T) {
	users, apps, roles, _, _, _, _ := openSqlite(t)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Login: "ada"}
	require.NoError(t, users.Add(ctx, user))
	app := &models.Application{ID: uuid.New(), Code: "app", DisplayName: "App",
		RedirectUris: []string{"https://a/cb"}, AuthorizationType: constants.AuthorizationTypeCode}
	require.NoError(t, apps.Add(ctx, app))

	viewer := &models.ApplicationRole{ID: uuid.New(), ApplicationID: app.ID, Name: "viewer"}
	editor := &models.ApplicationRole{ID: uuid.New(), ApplicationID: app.ID, Name: "editor"}
	require.NoError(t, roles.Add(ctx, viewer))
	require.NoError(t, roles.Add(ctx, editor))
	require.NoError(t, roles.Assign(ctx, user.ID, viewer.ID))

	all, err := roles.ListByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	held, err := roles.ListByUser(ctx, user.ID, app.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "viewer", held[0].Name)
}

func TestCodeRepository_AtomicRedemption(t *testing.T) {
	_, _, _, _, _, codes, _ := openSqlite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	code := &models.AuthorizationCode{
		Code:          "abc",
		UserID:        uuid.New(),
		ApplicationID: uuid.New(),
		Scopes:        []string{"read", "write"},
		RedirectURI:   "https://client.example/cb",
		CreatedAt:     now,
	}
	require.NoError(t, codes.Add(ctx, code))

	got, err := codes.GetByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, got.Scopes)

	require.NoError(t, codes.Delete(ctx, "abc"))
	assert.True(t, errors.IsNotFound(codes.Delete(ctx, "abc")), "second delete must report NotFound")
}

func TestCodeRepository_DeleteExpired(t *testing.T) {
	_, _, _, _, _, codes, _ := openSqlite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	add := func(code string, createdAt time.Time) {
		require.NoError(t, codes.Add(ctx, &models.AuthorizationCode{
			Code: code, UserID: uuid.New(), ApplicationID: uuid.New(),
			RedirectURI: "https://c/cb", CreatedAt: createdAt,
		}))
	}
	add("old", now.Add(-time.Hour))
	add("fresh", now)

	deleted, err := codes.DeleteExpired(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTokenRepository_RefreshLifecycle(t *testing.T) {
	_, _, _, _, _, _, tokens := openSqlite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	record := &models.Token{
		JTI:           uuid.NewString(),
		UserID:        uuid.New(),
		ApplicationID: uuid.New(),
		TokenType:     constants.TokenTypeRefresh,
		Value:         "opaque-refresh-value",
		Scopes:        []string{"read"},
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Hour),
	}
	require.NoError(t, tokens.Save(ctx, record))

	got, err := tokens.GetByValue(ctx, "opaque-refresh-value")
	require.NoError(t, err)
	assert.Equal(t, record.UserID, got.UserID)

	require.NoError(t, tokens.Delete(ctx, "opaque-refresh-value"))
	assert.True(t, errors.IsNotFound(tokens.Delete(ctx, "opaque-refresh-value")))
}

func TestScopeRepository_GetByName(t *testing.T) {
	_, _, _, scopes, _, _, _ := openSqlite(t)
	ctx := context.Background()

	require.NoError(t, scopes.Add(ctx, &models.Scope{ID: uuid.New(), Name: constants.ScopeAll}))

	got, err := scopes.GetScopeByName(ctx, constants.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, constants.ScopeAll, got.Name)

	_, err = scopes.GetScopeByName(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}
