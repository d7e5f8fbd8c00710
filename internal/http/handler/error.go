package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"microblog/internal/http/middleware"
	"microblog/internal/logging"
	"microblog/internal/session"
	"microblog/web"
)

// Config returns the Fiber configuration the handlers expect: embedded views,
// the default layout and the error page handler.
func Config(l *logging.Logger) fiber.Config {
	return fiber.Config{
		Views:        web.NewEngine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: ErrorHandler(l),
	}
}

// writeError renders the error view with a status code and a human-readable
// message. Internal error details never reach the page.
func writeError(c *fiber.Ctx, status int, message string) error {
	err := c.Status(status).Render("error", fiber.Map{
		"Title":     message,
		"Code":      status,
		"Message":   message,
		"RequestID": middleware.RequestIDFromCtx(c),
		"Admin":     session.FromCtx(c).IsAdmin(),
	})
	if err != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}

// ErrorHandler returns a Fiber global error handler that renders framework
// errors and logs anything unexpected returned by a handler.
func ErrorHandler(l *logging.Logger) fiber.ErrorHandler {
	if l == nil {
		l = logging.Discard()
	}
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			l.Error("request_failed", err, map[string]any{
				"request_id": middleware.RequestIDFromCtx(c),
				"method":     c.Method(),
				"path":       c.Path(),
			})
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "Bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "Page not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "Method not allowed")
		default:
			return writeError(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
}
