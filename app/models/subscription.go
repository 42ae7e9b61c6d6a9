package models

import "time"

const (
	PlanTypeTrial   = "trial"
	PlanTypeMonthly = "monthly"
	PlanTypeYearly  = "yearly"
)

const (
	SubscriptionStatusActive        = "active"
	SubscriptionStatusCanceled      = "canceled"
	SubscriptionStatusPaymentFailed = "payment_failed"
)

// Subscription mirrors the billing provider's subscription state for a user.
// At most one row per user; status transitions instead of deletion.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	PlanType  string    `gorm:"type:varchar(20);not null;default:'trial'" json:"plan_type"`
	StartDate time.Time `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:timestamp;not null" json:"end_date"`
	Status    string    `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the subscription entitles the user right now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.EndDate.After(now)
}

// PlanTypeRank orders plan types so that renewals never downgrade the tier.
func PlanTypeRank(planType string) int {
	switch planType {
	case PlanTypeYearly:
		return 2
	case PlanTypeMonthly:
		return 1
	default:
		return 0
	}
}
