package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/service"
)

func TestBuildClaims_CoversIdentityRolesAndScopes(t *testing.T) {
	svc := service.NewClaimsService()

	user := &models.User{
		ID:          uuid.New(),
		Login:       "ada",
		DisplayName: "Ada Lovelace",
		Claims:      []models.Claim{{Name: "identra:admin", Value: "true"}},
	}
	app := &models.Application{ID: uuid.New(), Code: "analytics"}
	roles := []*models.ApplicationRole{
		{ID: uuid.New(), ApplicationID: app.ID, Name: "viewer"},
		{ID: uuid.New(), ApplicationID: app.ID, Name: "editor"},
	}

	claims := svc.BuildClaims(user, app, roles, []string{"read", "write"})

	byName := map[string][]string{}
	for _, c := range claims {
		byName[c.Name] = append(byName[c.Name], c.Value)
	}
	assert.Equal(t, []string{"ada"}, byName[service.ClaimNameLogin])
	assert.Equal(t, []string{"Ada Lovelace"}, byName[service.ClaimNameName])
	assert.Equal(t, []string{"analytics"}, byName[service.ClaimNameClient])
	assert.ElementsMatch(t, []string{"viewer", "editor"}, byName[service.ClaimNameRole])
	assert.ElementsMatch(t, []string{"read", "write"}, byName[service.ClaimNameScope])
	assert.Equal(t, []string{"true"}, byName["identra:admin"])
}

func TestBuildClaims_Deterministic(t *testing.T) {
	svc := service.NewClaimsService()

	user := &models.User{ID: uuid.New(), Login: "ada", DisplayName: "Ada"}
	app := &models.Application{ID: uuid.New(), Code: "app"}
	rolesForward := []*models.ApplicationRole{
		{ApplicationID: app.ID, Name: "a"},
		{ApplicationID: app.ID, Name: "b"},
	}
	rolesReversed := []*models.ApplicationRole{rolesForward[1], rolesForward[0]}

	first := svc.BuildClaims(user, app, rolesForward, []string{"y", "x"})
	second := svc.BuildClaims(user, app, rolesReversed, []string{"x", "y"})
	assert.Equal(t, first, second)
}

func TestBuildClaims_SkipsEmptyValues(t *testing.T) {
	svc := service.NewClaimsService()

	user := &models.User{ID: uuid.New()}
	claims := svc.BuildClaims(user, nil, []*models.ApplicationRole{nil, {Name: ""}}, []string{""})
	assert.Empty(t, claims)
}
