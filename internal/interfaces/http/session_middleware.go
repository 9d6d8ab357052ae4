package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Identidad del cliente del carrito.
const (
	UserIDCookie = "price_catalog_user_id"
	UserIDHeader = "X-User-ID"
	LocalCartID  = "cart_user_id"

	userIDCookieMaxAge = 365 * 24 * time.Hour
)

// SessionMiddleware resuelve el id del cliente: cabecera X-User-ID, luego cookie.
// Si ninguno es un UUID válido genera uno nuevo y lo fija en la cookie (1 año).
func SessionMiddleware(secureCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := parseUserID(c.Get(UserIDHeader)); ok {
			c.Locals(LocalCartID, id)
			return c.Next()
		}
		if id, ok := parseUserID(c.Cookies(UserIDCookie)); ok {
			c.Locals(LocalCartID, id)
			return c.Next()
		}

		id := uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     UserIDCookie,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(userIDCookieMaxAge),
			MaxAge:   int(userIDCookieMaxAge.Seconds()),
			HTTPOnly: true,
			Secure:   secureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(LocalCartID, id)
		return c.Next()
	}
}

// GetCartUserID id del cliente resuelto por SessionMiddleware.
func GetCartUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCartID).(string)
	return s
}

func parseUserID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
