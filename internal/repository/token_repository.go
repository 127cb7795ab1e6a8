package repository

import (
	"time"

	"github.com/workstream/task-assignment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Revoke blacklists a refresh token by JTI. Revoking the same token twice
// is a no-op.
func (r *GormTokenRepository) Revoke(jti string, expiresAt time.Time) error {
	token := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&token).Error
}

// IsRevoked reports whether a JTI has been blacklisted
func (r *GormTokenRepository) IsRevoked(jti string) (bool, error) {
	var count int64
	err := r.db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
