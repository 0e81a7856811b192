package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. It documents the middleware wiring
// pattern and serves as a placeholder slot in the chain.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
