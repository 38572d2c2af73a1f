package service

import (
	"sort"

	"github.com/identra/identra/internal/domain/models"
)

// Well-known claim names emitted by the factory.
const (
	ClaimNameLogin  = "login"
	ClaimNameName   = "name"
	ClaimNameClient = "client"
	ClaimNameRole   = "role"
	ClaimNameScope  = "scope"
)

type claimsService struct{}

// NewClaimsService returns the deterministic claim factory.
func NewClaimsService() ClaimsService {
	return claimsService{}
}

// BuildClaims derives the claim set for a principal towards an application.
// No I/O; the output is sorted so equal inputs always produce equal output.
func (claimsService) BuildClaims(user *models.User, app *models.Application, roles []*models.ApplicationRole, scopes []string) []models.Claim {
	claims := make([]models.Claim, 0, len(user.Claims)+len(roles)+len(scopes)+3)

	if user.Login != "" {
		claims = append(claims, models.Claim{Name: ClaimNameLogin, Value: user.Login})
	}
	if user.DisplayName != "" {
		claims = append(claims, models.Claim{Name: ClaimNameName, Value: user.DisplayName})
	}
	if app != nil && app.Code != "" {
		claims = append(claims, models.Claim{Name: ClaimNameClient, Value: app.Code})
	}
	for _, role := range roles {
		if role == nil || role.Name == "" {
			continue
		}
		claims = append(claims, models.Claim{Name: ClaimNameRole, Value: role.Name})
	}
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		claims = append(claims, models.Claim{Name: ClaimNameScope, Value: scope})
	}
	claims = append(claims, user.Claims...)

	sort.Slice(claims, func(i, j int) bool {
		if claims[i].Name != claims[j].Name {
			return claims[i].Name < claims[j].Name
		}
		return claims[i].Value < claims[j].Value
	})
	return claims
}
