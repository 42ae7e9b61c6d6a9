package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	STATUS_PENDING = "pending"
	STATUS_ACTIVE  = "active"
)

type User struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email           string          `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password        string          `gorm:"type:text" json:"-" validate:"required,min=6"`
	Status          string          `gorm:"type:varchar(50);default:'pending'" json:"status" validate:"oneof=pending active"`
	EmailVerifiedAt *time.Time      `gorm:"type:timestamp;default:null" json:"email_verified_at"`
	Subscription    *Subscription   `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	CharacterQuota  *CharacterQuota `gorm:"foreignKey:UserID" json:"character_quota,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Status:   STATUS_PENDING,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsVerified reports whether the user's email address has been verified.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// MarkVerified sets the verification timestamp and activates the account.
func (u *User) MarkVerified(now time.Time) {
	u.EmailVerifiedAt = &now
	u.Status = STATUS_ACTIVE
}
