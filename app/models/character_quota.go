package models

import "time"

const (
	// TrialQuotaCharacters is granted to users with no quota row yet.
	TrialQuotaCharacters = 10000
	// TrialDurationDays bounds the trial subscription and its quota.
	TrialDurationDays = 7
)

// CharacterQuota tracks a user's synthesis character allowance.
// PermanentQuota comes from one-time purchases and never expires;
// TemporaryQuota is subscription-granted and dies with QuotaExpiry.
type CharacterQuota struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	PermanentQuota int64      `gorm:"not null;default:0" json:"permanent_quota"`
	TemporaryQuota int64      `gorm:"not null;default:0" json:"temporary_quota"`
	UsedCharacters int64      `gorm:"not null;default:0" json:"used_characters"`
	QuotaExpiry    *time.Time `gorm:"type:timestamp;default:null" json:"quota_expiry"`
	LastUpdated    time.Time  `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Remaining computes the usable balance at read time. The temporary part
// only counts while QuotaExpiry is unset or in the future; the result may
// be negative when the user has overdrawn an expired grant.
func (q *CharacterQuota) Remaining(now time.Time) int64 {
	balance := q.PermanentQuota - q.UsedCharacters
	if q.QuotaExpiry == nil || q.QuotaExpiry.After(now) {
		balance += q.TemporaryQuota
	}
	return balance
}

// NewTrialQuota returns the default quota row created lazily for users
// without one: a 7-day 10,000 character temporary grant.
func NewTrialQuota(userID uint, now time.Time) *CharacterQuota {
	expiry := now.AddDate(0, 0, TrialDurationDays)
	return &CharacterQuota{
		UserID:         userID,
		PermanentQuota: 0,
		TemporaryQuota: TrialQuotaCharacters,
		UsedCharacters: 0,
		QuotaExpiry:    &expiry,
	}
}

// NewTrialSubscription returns the default trial subscription created
// alongside NewTrialQuota.
func NewTrialSubscription(userID uint, now time.Time) *Subscription {
	return &Subscription{
		UserID:    userID,
		PlanType:  PlanTypeTrial,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, TrialDurationDays),
		Status:    SubscriptionStatusActive,
	}
}
