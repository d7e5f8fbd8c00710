// Package session keeps the admin capability in an encrypted client-side cookie.
//
// The cookie value is sealed with AES-GCM by Fiber's encryptcookie middleware,
// so a client can neither read nor forge it; a cookie that fails to decrypt is
// dropped and the request is anonymous.
package session

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"

	"microblog/internal/config"
)

const (
	// LocalKey is the key under which the resolved Session is stored in Fiber locals.
	LocalKey = "session"

	adminValue = "admin"
)

// Session is the per-request view of the caller's capabilities. It is resolved
// once at request start and never changes during the request.
type Session struct {
	admin bool
}

// IsAdmin reports whether the request carries an admin session.
func (s Session) IsAdmin() bool {
	return s.admin
}

// Authority issues, resolves and clears admin sessions.
type Authority struct {
	cookieName string
	key        string
	ttl        time.Duration
	secure     bool
}

// NewAuthority builds an Authority from cfg. With an empty secret a random key
// is generated, so sessions do not survive a restart.
func NewAuthority(cfg config.SessionConfig) *Authority {
	key := DeriveKey(cfg.Secret)
	if cfg.Secret == "" {
		key = encryptcookie.GenerateKey()
	}
	name := cfg.CookieName
	if name == "" {
		name = "microblog_session"
	}
	return &Authority{
		cookieName: name,
		key:        key,
		ttl:        cfg.TTL(),
		secure:     cfg.Secure,
	}
}

// DeriveKey turns an arbitrary secret into a base64 AES-256 key.
func DeriveKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// CookieName returns the name of the session cookie.
func (a *Authority) CookieName() string {
	return a.cookieName
}

// Encrypt returns the middleware that decrypts incoming and encrypts outgoing
// cookies. It must run before Resolve.
func (a *Authority) Encrypt() fiber.Handler {
	return encryptcookie.New(encryptcookie.Config{
		Key: a.key,
	})
}

// Resolve stores the request's Session in locals under LocalKey.
func (a *Authority) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalKey, Session{admin: c.Cookies(a.cookieName) == adminValue})
		return c.Next()
	}
}

// Establish marks the client as admin from the next request on.
func (a *Authority) Establish(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    adminValue,
		Path:     "/",
		Expires:  time.Now().Add(a.ttl),
		Secure:   a.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear removes all session state, returning the client to anonymous.
func (a *Authority) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   a.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// FromCtx returns the Session resolved for this request; anonymous if Resolve did not run.
func FromCtx(c *fiber.Ctx) Session {
	if s, ok := c.Locals(LocalKey).(Session); ok {
		return s
	}
	return Session{}
}

// RequireAdmin guards privileged handlers: without an admin session it
// redirects to loginPath and the handlers after it never run.
func RequireAdmin(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !FromCtx(c).IsAdmin() {
			return c.Redirect(loginPath, fiber.StatusFound)
		}
		return c.Next()
	}
}
