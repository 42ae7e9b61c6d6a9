package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/voicecanvas/voicecanvas/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in session; answers 401 JSON otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	return c.Next()
}
