package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie identifies one browser's game. The value is an opaque uuid;
// all progress lives server-side in the state store.
const SessionCookie = "game_session"

// PlayerSessionMiddleware makes sure every game request carries a session
// key, minting a fresh cookie when none is present.
func PlayerSessionMiddleware(cookieMaxAge int, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Cookies(SessionCookie)
		if key == "" {
			key = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    key,
				MaxAge:   cookieMaxAge,
				HTTPOnly: true,
				Secure:   secure,
				SameSite: "Lax",
			})
		}
		c.Locals("session_key", key)
		return c.Next()
	}
}

// SessionKey returns the request's game session key.
func SessionKey(c *fiber.Ctx) string {
	key, _ := c.Locals("session_key").(string)
	return key
}
