package repository

import (
	"time"

	"github.com/taskhive/taskhive-api/internal/models"
	"gorm.io/gorm"
)

// GormSessionRepository is a GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Create records a newly issued session token
func (r *GormSessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

// FindByTokenID returns the session recorded for a token ID
func (r *GormSessionRepository) FindByTokenID(tokenID string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("token_id = ?", tokenID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// RevokeForUser marks every live session of a user as revoked
func (r *GormSessionRepository) RevokeForUser(userID uint64) error {
	now := time.Now()
	return r.db.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// GormOTPRepository is a GORM implementation of OTPRepository
type GormOTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &GormOTPRepository{db: db}
}

// Replace stores a challenge, discarding any previous one for the user
func (r *GormOTPRepository) Replace(challenge *models.OTPChallenge) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", challenge.UserID).
			Delete(&models.OTPChallenge{}).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
}

// FindByUserID returns the pending challenge, if any
func (r *GormOTPRepository) FindByUserID(userID uint64) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	if err := r.db.Where("user_id = ?", userID).First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// DeleteForUser clears the pending challenge
func (r *GormOTPRepository) DeleteForUser(userID uint64) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.OTPChallenge{}).Error
}
