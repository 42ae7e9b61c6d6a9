package repository

import (
	"time"

	"github.com/voicecanvas/voicecanvas/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdatePassword(userID uint, hashedPassword string) error
	MarkVerified(userID uint, when time.Time) error
}

// PlanRepository defines subscription/quota reads used by the user-facing
// plan endpoint and the synthesis path.
type PlanRepository interface {
	// GetOrCreatePlan returns the user's subscription and quota, lazily
	// creating the 7-day trial defaults for either row that is missing.
	GetOrCreatePlan(userID uint, now time.Time) (*models.Subscription, *models.CharacterQuota, error)
	GetSubscriptionByEmail(email string) (*models.Subscription, error)
	ConsumeCharacters(userID uint, characters int64) error
}

// TokenRepository defines storage for single-use reset and verification tokens.
type TokenRepository interface {
	CreateResetToken(token *models.ResetToken) error
	GetResetToken(token string) (*models.ResetToken, error)
	DeleteResetToken(token string) error
	DeleteResetTokensByUser(userID uint) error

	CreateVerificationToken(token *models.VerificationToken) error
	GetVerificationToken(token string) (*models.VerificationToken, error)
	DeleteVerificationToken(token string) error
	DeleteVerificationTokensByEmail(email string) error
}
