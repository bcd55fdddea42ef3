package middleware

import (
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestLogger logs one line per request and tags it with a request id. An
// incoming X-Request-ID is honored so upstream proxies can correlate; a fresh
// uuid is minted otherwise.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		err := c.Next()

		event := logger.Get().Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start))
		if err != nil {
			event = event.Err(err)
		}
		event.Msg("request")

		return err
	}
}
