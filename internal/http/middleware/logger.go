package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"microblog/internal/logging"
)

// Logger logs each HTTP request as one JSON line with request_id, method,
// path (no query string), status and latency in milliseconds.
func Logger(l *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Let the app error handler write the response so the final status is logged.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := map[string]any{
			"request_id": RequestIDFromCtx(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if status >= fiber.StatusInternalServerError {
			entry["level"] = "error"
		}
		l.Log(entry)

		return nil
	}
}
