package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// ================================================================================
// Application Roles
// ================================================================================

type RoleRepository struct {
	mu    sync.RWMutex
	roles []*models.ApplicationRole
	// membership maps user id to the role ids it holds.
	membership map[uuid.UUID]map[uuid.UUID]bool
}

var _ repository.ApplicationRoleRepository = (*RoleRepository)(nil)

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{membership: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (r *RoleRepository) Add(ctx context.Context, role *models.ApplicationRole) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *role
	r.roles = append(r.roles, &stored)
	return nil
}

// Assign links a user to a role. Test and seeding helper; durable backends
// model this as a join table.
func (r *RoleRepository) Assign(userID, roleID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.membership[userID] == nil {
		r.membership[userID] = make(map[uuid.UUID]bool)
	}
	r.membership[userID][roleID] = true
}

func (r *RoleRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.ApplicationRole, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.ApplicationRole
	for _, role := range r.roles {
		if role.ApplicationID == applicationID {
			found := *role
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID, applicationID uuid.UUID) ([]*models.ApplicationRole, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	held := r.membership[userID]
	var out []*models.ApplicationRole
	for _, role := range r.roles {
		if role.ApplicationID == applicationID && held[role.ID] {
			found := *role
			out = append(out, &found)
		}
	}
	return out, nil
}

// ================================================================================
// Scopes
// ================================================================================

type ScopeRepository struct {
	mu     sync.RWMutex
	byName map[string]*models.Scope
}

var _ repository.ScopeRepository = (*ScopeRepository)(nil)

func NewScopeRepository() *ScopeRepository {
	return &ScopeRepository{byName: make(map[string]*models.Scope)}
}

func (r *ScopeRepository) Add(ctx context.Context, scope *models.Scope) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *scope
	r.byName[scope.Name] = &stored
	return nil
}

func (r *ScopeRepository) GetScopeByName(ctx context.Context, name string) (*models.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.byName[name]
	if !ok {
		return nil, errors.ErrNotFound("scope")
	}
	found := *stored
	return &found, nil
}

// ================================================================================
// Claims
// ================================================================================

type ClaimRepository struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]*models.Claim
}

var _ repository.ClaimRepository = (*ClaimRepository)(nil)

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{byUser: make(map[uuid.UUID][]*models.Claim)}
}

func (r *ClaimRepository) Add(ctx context.Context, userID uuid.UUID, claim *models.Claim) error {
	if err := ctx.Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *claim
	r.byUser[userID] = append(r.byUser[userID], &stored)
	return nil
}

func (r *ClaimRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Claim, 0, len(r.byUser[userID]))
	for _, claim := range r.byUser[userID] {
		found := *claim
		out = append(out, &found)
	}
	return out, nil
}
