package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

// TokenRepository persists token records; refresh-token consumption uses the
// same delete-and-count pattern as authorization codes.
type TokenRepository struct {
	db *gorm.DB
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Save(ctx context.Context, token *models.Token) error {
	record := &tokenRecord{
		JTI:           token.JTI,
		UserID:        token.UserID,
		ApplicationID: token.ApplicationID,
		TokenType:     string(token.TokenType),
		Value:         token.Value,
		Scopes:        joinList(token.Scopes),
		IssuedAt:      token.IssuedAt,
		ExpiresAt:     token.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (*models.Token, error) {
	var record tokenRecord
	err := r.db.WithContext(ctx).First(&record, "value = ?", value).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound("token")
		}
		return nil, errors.ErrDataAccess(err)
	}
	return record.toModel(), nil
}

func (r *TokenRepository) Delete(ctx context.Context, value string) error {
	result := r.db.WithContext(ctx).Delete(&tokenRecord{}, "value = ?", value)
	if result.Error != nil {
		return errors.ErrDataAccess(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("token")
	}
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&tokenRecord{}, "expires_at < ?", cutoff)
	if result.Error != nil {
		return 0, errors.ErrDataAccess(result.Error)
	}
	return result.RowsAffected, nil
}
