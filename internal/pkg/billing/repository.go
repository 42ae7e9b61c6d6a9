package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voicecanvas/voicecanvas/app/models"
)

// Repository provides DB operations used by the reconciliation engine.
// Transaction yields a Repository bound to a single database transaction so
// that an event's read-modify-write sequence cannot race a concurrent event
// for the same user.
type Repository interface {
	Transaction(fn func(Repository) error) error

	GetUserByEmail(email string) (*models.User, error)
	GetSubscription(userID uint) (*models.Subscription, error)
	UpsertSubscription(sub *models.Subscription) error
	UpdateSubscription(userID uint, fields map[string]interface{}) error

	GetQuota(userID uint) (*models.CharacterQuota, error)
	UpsertQuota(quota *models.CharacterQuota) error
	AddPermanentQuota(userID uint, characters int64) error

	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type",
			"end_date",
			"status",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ?", sub.UserID).First(sub).Error
}

func (r *gormRepository) UpdateSubscription(userID uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.Subscription{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *gormRepository) GetQuota(userID uint) (*models.CharacterQuota, error) {
	var quota models.CharacterQuota
	if err := r.db.Where("user_id = ?", userID).First(&quota).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}

func (r *gormRepository) UpsertQuota(quota *models.CharacterQuota) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"temporary_quota",
			"quota_expiry",
			"last_updated",
		}),
	}).Create(quota).Error; err != nil {
		return err
	}

	return r.db.Where("user_id = ?", quota.UserID).First(quota).Error
}

func (r *gormRepository) AddPermanentQuota(userID uint, characters int64) error {
	quota := &models.CharacterQuota{
		UserID:         userID,
		PermanentQuota: characters,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"permanent_quota": gorm.Expr("permanent_quota + ?", characters),
			"last_updated":    time.Now(),
		}),
	}).Create(quota).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
