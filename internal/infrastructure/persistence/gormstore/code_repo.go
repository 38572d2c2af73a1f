package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// CodeRepository persists authorization codes. Redemption relies on the
// DELETE reporting how many rows it touched: zero rows means the code was
// already consumed by a concurrent attempt.
type CodeRepository struct {
	db *gorm.DB
}

var _ repository.AuthorizationCodeRepository = (*CodeRepository)(nil)

func NewCodeRepository(db *gorm.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) Add(ctx context.Context, code *models.AuthorizationCode) error {
	record := &codeRecord{
		Code:          code.Code,
		UserID:        code.UserID,
		ApplicationID: code.ApplicationID,
		Scopes:        joinList(code.Scopes),
		RedirectURI:   code.RedirectURI,
		CreatedAt:     code.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *CodeRepository) GetByCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	var record codeRecord
	err := r.db.WithContext(ctx).First(&record, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("authorization code")
		}
		return nil, errors.ErrDataAccess(err)
	}
	return record.toModel(), nil
}

func (r *CodeRepository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Delete(&codeRecord{}, "code = ?", code)
	if result.Error != nil {
		return errors.ErrDataAccess(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("authorization code")
	}
	return nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&codeRecord{}, "created_at < ?", cutoff)
	if result.Error != nil {
		return 0, errors.ErrDataAccess(result.Error)
	}
	return result.RowsAffected, nil
}
