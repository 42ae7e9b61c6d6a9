package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/voicecanvas/voicecanvas/internal/pkg/token"
)

type tokenService interface {
	IssuePasswordReset(email string) error
	ResetPassword(tokenValue, newPassword string) error
	IssueEmailVerification(email string) error
	VerifyEmail(tokenValue string) error
}

// AuthAPIController serves the password reset and email verification flows.
type AuthAPIController struct {
	tokens   tokenService
	validate *validator.Validate
}

func NewAuthAPIController(tokens tokenService) *AuthAPIController {
	return &AuthAPIController{tokens: tokens, validate: validator.New()}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleForgotPassword handles POST /api/auth/forgot-password. The reply is
// the same whether or not the account exists, so the endpoint cannot be used
// to enumerate addresses.
func (ac *AuthAPIController) HandleForgotPassword(c *fiber.Ctx) error {
	var body emailRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := ac.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a valid email is required"})
	}

	if err := ac.tokens.IssuePasswordReset(body.Email); err != nil && !errors.Is(err, token.ErrUserNotFound) {
		log.Errorf("[Auth] Password reset issuance for %s failed: %v", body.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process request"})
	}

	return c.JSON(fiber.Map{
		"message": "If an account exists for this address, a reset link has been sent.",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleResetPassword handles POST /api/auth/reset-password.
func (ac *AuthAPIController) HandleResetPassword(c *fiber.Ctx) error {
	var body resetPasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := ac.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token and password are required"})
	}

	err := ac.tokens.ResetPassword(body.Token, body.Password)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Password updated."})
	case errors.Is(err, token.ErrPasswordTooShort):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 6 characters"})
	case errors.Is(err, token.ErrTokenExpired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reset link has expired"})
	case errors.Is(err, token.ErrTokenNotFound), errors.Is(err, token.ErrUserNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reset link"})
	default:
		log.Errorf("[Auth] Password reset failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset password"})
	}
}

// HandleVerifyEmail handles GET /api/auth/verify-email?token=.
func (ac *AuthAPIController) HandleVerifyEmail(c *fiber.Ctx) error {
	tokenValue := c.Query("token")
	if tokenValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	err := ac.tokens.VerifyEmail(tokenValue)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Email verified."})
	case errors.Is(err, token.ErrTokenExpired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "verification link has expired"})
	case errors.Is(err, token.ErrTokenNotFound), errors.Is(err, token.ErrUserNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid verification link"})
	default:
		log.Errorf("[Auth] Email verification failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to verify email"})
	}
}

// HandleResendVerification handles POST /api/auth/resend-verification.
// Unlike the forgot-password flow this one reports unknown addresses; the
// caller already proved knowledge of the address by registering it.
func (ac *AuthAPIController) HandleResendVerification(c *fiber.Ctx) error {
	var body emailRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := ac.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a valid email is required"})
	}

	err := ac.tokens.IssueEmailVerification(body.Email)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Verification email sent."})
	case errors.Is(err, token.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no account for this email"})
	case errors.Is(err, token.ErrAlreadyVerified):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is already verified"})
	default:
		log.Errorf("[Auth] Verification issuance for %s failed: %v", body.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send verification email"})
	}
}
