package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// ================================================================================
// Users
// ================================================================================

type UserRepository struct {
	db *gorm.DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Add(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(newUserRecord(user)).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("user")
		}
		return nil, errors.ErrDataAccess(err)
	}
	claims, err := r.loadClaims(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.toModel(claims), nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "login = ?", login).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("user")
		}
		return nil, errors.ErrDataAccess(err)
	}
	claims, err := r.loadClaims(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return record.toModel(claims), nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	// Select("*") forces zero-valued fields through; a plain struct update
	// would silently skip clearing flags like Blocked.
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", user.ID).
		Select("*").Omit("id", "created_at").
		Updates(newUserRecord(user))
	if result.Error != nil {
		return errors.ErrDataAccess(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("user")
	}
	return nil
}

func (r *UserRepository) loadClaims(ctx context.Context, userID uuid.UUID) ([]models.Claim, error) {
	var records []claimRecord
	if err := r.db.WithContext(ctx).Find(&records, "user_id = ?", userID).Error; err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	claims := make([]models.Claim, 0, len(records))
	for _, rec := range records {
		claims = append(claims, models.Claim{Name: rec.Name, Description: rec.Description, Value: rec.Value})
	}
	return claims, nil
}

// ================================================================================
// Applications
// ================================================================================

type ApplicationRepository struct {
	db *gorm.DB
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Add(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(newApplicationRecord(app)).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var record applicationRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("application")
		}
		return nil, errors.ErrDataAccess(err)
	}
	return record.toModel(), nil
}

func (r *ApplicationRepository) GetByCode(ctx context.Context, code string) (*models.Application, error) {
	var record applicationRecord
	err := r.db.WithContext(ctx).First(&record, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("application")
		}
		return nil, errors.ErrDataAccess(err)
	}
	return record.toModel(), nil
}

// ================================================================================
// Application Roles
// ================================================================================

type RoleRepository struct {
	db *gorm.DB
}

var _ repository.ApplicationRoleRepository = (*RoleRepository)(nil)

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Add(ctx context.Context, role *models.ApplicationRole) error {
	record := &roleRecord{ID: role.ID, ApplicationID: role.ApplicationID, Name: role.Name}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

// Assign links a user to a role through the join table.
func (r *RoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	record := &userRoleRecord{UserID: userID, RoleID: roleID}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *RoleRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.ApplicationRole, error) {
	var records []roleRecord
	if err := r.db.WithContext(ctx).Find(&records, "application_id = ?", applicationID).Error; err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	return rolesToModels(records), nil
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID, applicationID uuid.UUID) ([]*models.ApplicationRole, error) {
	var records []roleRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = application_roles.id").
		Where("user_roles.user_id = ? AND application_roles.application_id = ?", userID, applicationID).
		Find(&records).Error
	if err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	return rolesToModels(records), nil
}

func rolesToModels(records []roleRecord) []*models.ApplicationRole {
	out := make([]*models.ApplicationRole, 0, len(records))
	for _, rec := range records {
		out = append(out, &models.ApplicationRole{ID: rec.ID, ApplicationID: rec.ApplicationID, Name: rec.Name})
	}
	return out
}

// ================================================================================
// Scopes
// ================================================================================

type ScopeRepository struct {
	db *gorm.DB
}

var _ repository.ScopeRepository = (*ScopeRepository)(nil)

func NewScopeRepository(db *gorm.DB) *ScopeRepository {
	return &ScopeRepository{db: db}
}

func (r *ScopeRepository) Add(ctx context.Context, scope *models.Scope) error {
	record := &scopeRecord{ID: scope.ID, Name: scope.Name, Description: scope.Description}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *ScopeRepository) GetScopeByName(ctx context.Context, name string) (*models.Scope, error) {
	var record scopeRecord
	err := r.db.WithContext(ctx).First(&record, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("scope")
		}
		return nil, errors.ErrDataAccess(err)
	}
	return &models.Scope{ID: record.ID, Name: record.Name, Description: record.Description}, nil
}

// ================================================================================
// Claims
// ================================================================================

type ClaimRepository struct {
	db *gorm.DB
}

var _ repository.ClaimRepository = (*ClaimRepository)(nil)

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Add(ctx context.Context, userID uuid.UUID, claim *models.Claim) error {
	record := &claimRecord{UserID: userID, Name: claim.Name, Description: claim.Description, Value: claim.Value}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *ClaimRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Claim, error) {
	var records []claimRecord
	if err := r.db.WithContext(ctx).Find(&records, "user_id = ?", userID).Error; err != nil {
		return nil, errors.ErrDataAccess(err)
	}
	out := make([]*models.Claim, 0, len(records))
	for _, rec := range records {
		out = append(out, &models.Claim{Name: rec.Name, Description: rec.Description, Value: rec.Value})
	}
	return out, nil
}
