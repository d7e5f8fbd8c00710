package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"microblog/internal/repository"
	"microblog/internal/service"
	"microblog/internal/session"
)

// LoginForm forgets any existing session and shows the login form.
func LoginForm(sessions *session.Authority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions.Clear(c)
		return render(c, "login", fiber.Map{"Title": "Log in"})
	}
}

// Login verifies the submitted credentials and, on success, establishes the
// admin session. Any previous session is cleared first, whatever the outcome.
func Login(auth service.AuthService, sessions *session.Authority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions.Clear(c)

		err := auth.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
		switch {
		case err == nil:
			sessions.Establish(c)
			return c.Redirect("/admin", fiber.StatusFound)
		case errors.Is(err, service.ErrUsernameRequired):
			return writeError(c, fiber.StatusBadRequest, "Must input username")
		case errors.Is(err, service.ErrPasswordRequired):
			return writeError(c, fiber.StatusBadRequest, "Must input password")
		case errors.Is(err, service.ErrStoreUnavailable) && errors.Is(err, repository.ErrCorrupt):
			return writeError(c, fiber.StatusNotFound, "Admin info is corrupted")
		case errors.Is(err, service.ErrStoreUnavailable):
			return writeError(c, fiber.StatusNotFound, "Admin info does not exist")
		case errors.Is(err, service.ErrInvalidCredentials):
			return writeError(c, fiber.StatusForbidden, "Invalid username or password")
		default:
			return err
		}
	}
}

// Logout clears the session and returns to the home page.
func Logout(sessions *session.Authority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions.Clear(c)
		return c.Redirect("/", fiber.StatusFound)
	}
}
