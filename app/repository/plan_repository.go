package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/voicecanvas/voicecanvas/app/models"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetOrCreatePlan loads the user's subscription and quota rows, creating
// the trial defaults for whichever is missing. Both creations run in one
// transaction so a crash cannot leave a half-initialized plan.
func (r *planRepository) GetOrCreatePlan(userID uint, now time.Time) (*models.Subscription, *models.CharacterQuota, error) {
	var sub models.Subscription
	var quota models.CharacterQuota

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// No plan rows exist for an unknown user; the caller turns the
		// not-found into its 404.
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).First(&quota).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			fresh := models.NewTrialQuota(userID, now)
			if err := tx.Create(fresh).Error; err != nil {
				return err
			}
			quota = *fresh
		}

		if err := tx.Where("user_id = ?", userID).First(&sub).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			fresh := models.NewTrialSubscription(userID, now)
			if err := tx.Create(fresh).Error; err != nil {
				return err
			}
			sub = *fresh
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &sub, &quota, nil
}

// GetSubscriptionByEmail resolves an email to its owner's subscription.
func (r *planRepository) GetSubscriptionByEmail(email string) (*models.Subscription, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ConsumeCharacters increments the monotonic usage counter.
func (r *planRepository) ConsumeCharacters(userID uint, characters int64) error {
	if characters <= 0 {
		return nil
	}
	res := r.db.Model(&models.CharacterQuota{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"used_characters": gorm.Expr("used_characters + ?", characters),
			"last_updated":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
