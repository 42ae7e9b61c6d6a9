package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/voicecanvas/voicecanvas/internal/pkg/session"
	"github.com/voicecanvas/voicecanvas/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// so controllers never touch the session store directly.
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		c.Locals(usercontext.ContextKey, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		// On error: treat as anonymous
		c.Locals(usercontext.ContextKey, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	userID, _ := sess.Get(usercontext.KeyUserID).(uint)
	email, _ := sess.Get(usercontext.KeyUserEmail).(string)
	if userID == 0 || email == "" {
		c.Locals(usercontext.ContextKey, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	name, _ := sess.Get(usercontext.KeyUserName).(string)
	c.Locals(usercontext.ContextKey, usercontext.UserContext{
		UserID:     userID,
		Email:      email,
		Name:       name,
		IsLoggedIn: true,
	})
	return c.Next()
}
