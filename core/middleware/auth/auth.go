package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// HeaderName carries the API key on every request.
const HeaderName = "X-API-Key"

// New returns a middleware rejecting requests without the configured key.
// An empty key disables authentication. Paths in skip are always allowed.
func New(apiKey string, skip ...string) fiber.Handler {
	open := make(map[string]bool, len(skip))
	for _, p := range skip {
		open[p] = true
	}

	return func(c *fiber.Ctx) error {
		if apiKey == "" || open[c.Path()] {
			return c.Next()
		}

		key := c.Get(HeaderName)
		if key == "" {
			key = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}
