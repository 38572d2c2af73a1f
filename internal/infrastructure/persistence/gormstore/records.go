package gormstore

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
)

// listSeparator joins owned string lists into a single column. Redirect URIs
// and secrets never contain newlines.
const listSeparator = "\n"

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, listSeparator)
}

type userRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Login        string    `gorm:"uniqueIndex;size:255"`
	DisplayName  string
	AuthMethod   string
	PasswordHash string
	TOTPSecret   string
	Blocked      bool
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toModel(claims []models.Claim) *models.User {
	return &models.User{
		ID:           r.ID,
		Login:        r.Login,
		DisplayName:  r.DisplayName,
		AuthMethod:   constants.AuthenticationMethod(r.AuthMethod),
		PasswordHash: r.PasswordHash,
		TOTPSecret:   r.TOTPSecret,
		Blocked:      r.Blocked,
		Deleted:      r.Deleted,
		Claims:       claims,
	}
}

func newUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Login:        u.Login,
		DisplayName:  u.DisplayName,
		AuthMethod:   string(u.AuthMethod),
		PasswordHash: u.PasswordHash,
		TOTPSecret:   u.TOTPSecret,
		Blocked:      u.Blocked,
		Deleted:      u.Deleted,
	}
}

type applicationRecord struct {
	ID                            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code                          string    `gorm:"uniqueIndex;size:255"`
	DisplayName                   string
	RedirectUris                  string `gorm:"type:text"`
	Secrets                       string `gorm:"type:text"`
	AccessTokenExpirationMinutes  int
	RefreshTokenExpirationMinutes int
	RequireTwoFactor              bool
	AuthorizationType             string
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

func (applicationRecord) TableName() string { return "applications" }

func (r *applicationRecord) toModel() *models.Application {
	return &models.Application{
		ID:                            r.ID,
		Code:                          r.Code,
		DisplayName:                   r.DisplayName,
		RedirectUris:                  splitList(r.RedirectUris),
		Secrets:                       splitList(r.Secrets),
		AccessTokenExpirationMinutes:  r.AccessTokenExpirationMinutes,
		RefreshTokenExpirationMinutes: r.RefreshTokenExpirationMinutes,
		RequireTwoFactor:              r.RequireTwoFactor,
		AuthorizationType:             constants.AuthorizationType(r.AuthorizationType),
	}
}

func newApplicationRecord(a *models.Application) *applicationRecord {
	return &applicationRecord{
		ID:                            a.ID,
		Code:                          a.Code,
		DisplayName:                   a.DisplayName,
		RedirectUris:                  joinList(a.RedirectUris),
		Secrets:                       joinList(a.Secrets),
		AccessTokenExpirationMinutes:  a.AccessTokenExpirationMinutes,
		RefreshTokenExpirationMinutes: a.RefreshTokenExpirationMinutes,
		RequireTwoFactor:              a.RequireTwoFactor,
		AuthorizationType:             string(a.AuthorizationType),
	}
}

type roleRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID `gorm:"type:uuid;index"`
	Name          string
	CreatedAt     time.Time
}

func (roleRecord) TableName() string { return "application_roles" }

type userRoleRecord struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (userRoleRecord) TableName() string { return "user_roles" }

type claimRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	Description string
	Value       string
}

func (claimRecord) TableName() string { return "claims" }

type scopeRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;size:255"`
	Description string
}

func (scopeRecord) TableName() string { return "scopes" }

type codeRecord struct {
	Code          string    `gorm:"primaryKey;size:255"`
	UserID        uuid.UUID `gorm:"type:uuid"`
	ApplicationID uuid.UUID `gorm:"type:uuid"`
	Scopes        string    `gorm:"type:text"`
	RedirectURI   string
	CreatedAt     time.Time `gorm:"index"`
}

func (codeRecord) TableName() string { return "authorization_codes" }

func (r *codeRecord) toModel() *models.AuthorizationCode {
	return &models.AuthorizationCode{
		Code:          r.Code,
		UserID:        r.UserID,
		ApplicationID: r.ApplicationID,
		Scopes:        splitList(r.Scopes),
		RedirectURI:   r.RedirectURI,
		CreatedAt:     r.CreatedAt,
	}
}

type tokenRecord struct {
	JTI           string    `gorm:"primaryKey;size:64"`
	UserID        uuid.UUID `gorm:"type:uuid"`
	ApplicationID uuid.UUID `gorm:"type:uuid"`
	TokenType     string
	Value         string `gorm:"index;size:512"`
	Scopes        string `gorm:"type:text"`
	IssuedAt      time.Time
	ExpiresAt     time.Time `gorm:"index"`
}

func (tokenRecord) TableName() string { return "tokens" }

func (r *tokenRecord) toModel() *models.Token {
	return &models.Token{
		JTI:           r.JTI,
		UserID:        r.UserID,
		ApplicationID: r.ApplicationID,
		TokenType:     constants.TokenType(r.TokenType),
		Value:         r.Value,
		Scopes:        splitList(r.Scopes),
		IssuedAt:      r.IssuedAt,
		ExpiresAt:     r.ExpiresAt,
	}
}
