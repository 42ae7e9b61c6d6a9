package models

import "time"

// ResetToken is a single-use password reset credential. Deleted on
// consumption and on detected expiry; at most one live token per user.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Expires   time.Time `gorm:"type:timestamp;not null" json:"expires"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// VerificationToken is a single-use email verification credential,
// keyed by email rather than user id (the address being proven).
type VerificationToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"-"`
	Email     string    `gorm:"index;type:varchar(200);not null" json:"email"`
	Expires   time.Time `gorm:"type:timestamp;not null" json:"expires"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the token's validity window has passed.
func (t *ResetToken) IsExpired(now time.Time) bool {
	return t.Expires.Before(now)
}

func (t *VerificationToken) IsExpired(now time.Time) bool {
	return t.Expires.Before(now)
}
