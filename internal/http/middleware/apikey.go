package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader is the header clients authenticate with.
const APIKeyHeader = "X-API-Key"

// APIKey guards a route group with a static API key. An empty configured key
// disables the check, for local development.
//
// The error body matches the handler package's standard error payload so
// clients see one shape regardless of which layer rejected them.
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		got := c.Get(APIKeyHeader)
		if got == "" {
			return unauthorized(c, "API_KEY_REQUIRED", "missing "+APIKeyHeader+" header")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return unauthorized(c, "INVALID_API_KEY", "invalid api key")
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"request_id": rid,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
