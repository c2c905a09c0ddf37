package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminTokenCookie is the HTTP-only cookie carrying the admin's signed token.
const AdminTokenCookie = "admin_token"

// AdminAuthMiddleware guards the back-office API. The token is read from the
// login cookie, with an Authorization: Bearer fallback for API clients.
func AdminAuthMiddleware(jwtSecret string) fiber.Handler {
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	secret := []byte(jwtSecret)

	return func(c *fiber.Ctx) error {
		token := c.Cookies(AdminTokenCookie)
		if token == "" {
			header := c.Get("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
			if token == header {
				token = ""
			}
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "authentication required",
			})
		}

		adminID, err := parseAdminToken(token, secret)
		if err != nil {
			log.Printf("[ADMIN_AUTH] rejected token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "invalid or expired session",
			})
		}

		c.Locals("admin_id", adminID)
		return c.Next()
	}
}

func parseAdminToken(tokenString string, secret []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	idFloat, ok := claims["admin_id"].(float64)
	if !ok {
		return 0, errors.New("missing admin_id claim")
	}
	return uint(idFloat), nil
}
