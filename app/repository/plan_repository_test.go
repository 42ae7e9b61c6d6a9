package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voicecanvas/voicecanvas/app/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}, &models.CharacterQuota{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Alice",
		Email:    email,
		Password: "secret",
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGetOrCreatePlanCreatesTrialDefaults(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	user := createTestUser(t, db, "alice@example.com")
	now := time.Now()

	sub, quota, err := repo.GetOrCreatePlan(user.ID, now)
	require.NoError(t, err)

	assert.Equal(t, models.PlanTypeTrial, sub.PlanType)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, int64(models.TrialQuotaCharacters), quota.TemporaryQuota)
	assert.Equal(t, int64(0), quota.PermanentQuota)
	require.NotNil(t, quota.QuotaExpiry)
	assert.WithinDuration(t, now.AddDate(0, 0, models.TrialDurationDays), *quota.QuotaExpiry, time.Second)
}

func TestGetOrCreatePlanReturnsExistingRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	user := createTestUser(t, db, "alice@example.com")
	now := time.Now()

	require.NoError(t, db.Create(&models.Subscription{
		UserID:    user.ID,
		PlanType:  models.PlanTypeYearly,
		StartDate: now.AddDate(0, 0, -10),
		EndDate:   now.AddDate(0, 0, 355),
		Status:    models.SubscriptionStatusActive,
	}).Error)
	require.NoError(t, db.Create(&models.CharacterQuota{
		UserID:         user.ID,
		PermanentQuota: 3000000,
		UsedCharacters: 500,
	}).Error)

	sub, quota, err := repo.GetOrCreatePlan(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeYearly, sub.PlanType)
	assert.Equal(t, int64(3000000), quota.PermanentQuota)
	assert.Equal(t, int64(500), quota.UsedCharacters)
}

func TestGetOrCreatePlanUnknownUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)

	_, _, err := repo.GetOrCreatePlan(999, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The failed lookup must not leave orphan trial rows behind.
	var subs, quotas int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subs).Error)
	require.NoError(t, db.Model(&models.CharacterQuota{}).Count(&quotas).Error)
	assert.Zero(t, subs)
	assert.Zero(t, quotas)
}

func TestGetSubscriptionByEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	user := createTestUser(t, db, "alice@example.com")
	now := time.Now()

	require.NoError(t, db.Create(&models.Subscription{
		UserID:    user.ID,
		PlanType:  models.PlanTypeMonthly,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, 30),
		Status:    models.SubscriptionStatusActive,
	}).Error)

	sub, err := repo.GetSubscriptionByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeMonthly, sub.PlanType)

	_, err = repo.GetSubscriptionByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConsumeCharacters(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	user := createTestUser(t, db, "alice@example.com")

	require.NoError(t, db.Create(&models.CharacterQuota{
		UserID:         user.ID,
		TemporaryQuota: 10000,
		UsedCharacters: 100,
	}).Error)

	require.NoError(t, repo.ConsumeCharacters(user.ID, 250))

	var quota models.CharacterQuota
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&quota).Error)
	assert.Equal(t, int64(350), quota.UsedCharacters)

	assert.ErrorIs(t, repo.ConsumeCharacters(999, 10), gorm.ErrRecordNotFound)
	assert.NoError(t, repo.ConsumeCharacters(user.ID, 0))
}
