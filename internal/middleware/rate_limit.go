package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit limits requests per client IP to max per window. name separates
// the counters of limiters sharing one storage; storage may be nil for
// process-local counters. With skipSuccessful only failed responses count
// against the budget.
func RateLimit(name string, max int, window time.Duration, storage fiber.Storage, skipSuccessful bool, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:                    max,
		Expiration:             window,
		Storage:                storage,
		SkipSuccessfulRequests: skipSuccessful,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": message,
			})
		},
	})
}
