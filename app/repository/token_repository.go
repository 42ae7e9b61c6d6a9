package repository

import (
	"gorm.io/gorm"

	"github.com/voicecanvas/voicecanvas/app/models"
)

// tokenRepository implements the TokenRepository interface
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateResetToken(token *models.ResetToken) error {
	return r.db.Create(token).Error
}

func (r *tokenRepository) GetResetToken(token string) (*models.ResetToken, error) {
	var t models.ResetToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) DeleteResetToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.ResetToken{}).Error
}

func (r *tokenRepository) DeleteResetTokensByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.ResetToken{}).Error
}

func (r *tokenRepository) CreateVerificationToken(token *models.VerificationToken) error {
	return r.db.Create(token).Error
}

func (r *tokenRepository) GetVerificationToken(token string) (*models.VerificationToken, error) {
	var t models.VerificationToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) DeleteVerificationToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.VerificationToken{}).Error
}

func (r *tokenRepository) DeleteVerificationTokensByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.VerificationToken{}).Error
}
