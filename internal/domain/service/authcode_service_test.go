package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/internal/infrastructure/persistence/memory"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

type codeFixture struct {
	svc   service.AuthCodeService
	codes *memory.CodeRepository
	user  *models.User
	app   *models.Application
}

func newCodeFixture(t *testing.T) *codeFixture {
	t.Helper()

	users := memory.NewUserRepository()
	apps := memory.NewApplicationRepository()
	user, app := testUser(), testApp()
	require.NoError(t, users.Add(context.Background(), user))
	require.NoError(t, apps.Add(context.Background(), app))

	codes := memory.NewCodeRepository()
	return &codeFixture{
		svc: service.NewAuthCodeService(
			codes, users, apps,
			service.NewSecretService(),
			oauthConfig(),
			logger.NewNoop(),
			service.NopMetrics(),
		),
		codes: codes,
		user:  user,
		app:   app,
	}
}

func TestIssueAndRedeemCode(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()
	now := time.Now()

	code, err := f.svc.IssueCode(ctx, f.user, f.app, []string{"read"}, f.app.RedirectUris[0], now)
	require.NoError(t, err)
	assert.Len(t, code.Code, oauthConfig().CodeLength)

	redemption, err := f.svc.RedeemCode(ctx, code.Code, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, redemption.User.ID)
	assert.Equal(t, f.app.ID, redemption.Application.ID)
	assert.Equal(t, []string{"read"}, redemption.Scopes)
}

func TestIssueCode_UnregisteredRedirectURI(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.IssueCode(context.Background(), f.user, f.app, nil, "https://evil.example/cb", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsValidationFailed(err))
}

func TestRedeemCode_ExactlyOnce(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()
	now := time.Now()

	code, err := f.svc.IssueCode(ctx, f.user, f.app, nil, f.app.RedirectUris[0], now)
	require.NoError(t, err)

	_, err = f.svc.RedeemCode(ctx, code.Code, now.Add(time.Minute))
	require.NoError(t, err)

	_, err = f.svc.RedeemCode(ctx, code.Code, now.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRedeemCode_ExpiryBoundary(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()
	now := time.Now()
	lifetime := oauthConfig().CodeExpiration()

	// Just inside the lifetime: redeemable.
	code, err := f.svc.IssueCode(ctx, f.user, f.app, nil, f.app.RedirectUris[0], now)
	require.NoError(t, err)
	_, err = f.svc.RedeemCode(ctx, code.Code, now.Add(lifetime-time.Second))
	require.NoError(t, err)

	// Just past the lifetime: expired, and the code is not consumed by the
	// failed attempt.
	code, err = f.svc.IssueCode(ctx, f.user, f.app, nil, f.app.RedirectUris[0], now)
	require.NoError(t, err)
	_, err = f.svc.RedeemCode(ctx, code.Code, now.Add(lifetime+time.Second))
	require.Error(t, err)
	assert.True(t, errors.IsExpired(err))

	stored, err := f.codes.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	assert.Equal(t, code.Code, stored.Code)
}

func TestRedeemCode_Unknown(t *testing.T) {
	f := newCodeFixture(t)

	_, err := f.svc.RedeemCode(context.Background(), "no-such-code", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPurgeExpired(t *testing.T) {
	f := newCodeFixture(t)
	ctx := context.Background()
	now := time.Now()
	lifetime := oauthConfig().CodeExpiration()

	stale, err := f.svc.IssueCode(ctx, f.user, f.app, nil, f.app.RedirectUris[0], now.Add(-2*lifetime))
	require.NoError(t, err)
	fresh, err := f.svc.IssueCode(ctx, f.user, f.app, nil, f.app.RedirectUris[0], now)
	require.NoError(t, err)

	deleted, err := f.svc.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.codes.GetByCode(ctx, stale.Code)
	assert.True(t, errors.IsNotFound(err))
	_, err = f.codes.GetByCode(ctx, fresh.Code)
	assert.NoError(t, err)
}
