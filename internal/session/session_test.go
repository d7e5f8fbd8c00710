package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/config"
)

func newTestApp(a *Authority, mutations *int) *fiber.App {
	app := fiber.New()
	app.Use(a.Encrypt())
	app.Use(a.Resolve())

	app.Post("/login", func(c *fiber.Ctx) error {
		a.Establish(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		a.Clear(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Post("/delete", RequireAdmin("/login"), func(c *fiber.Ctx) error {
		*mutations++
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if FromCtx(c).IsAdmin() {
			return c.SendString("admin")
		}
		return c.SendString("anonymous")
	})
	return app
}

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestRequireAdmin_DeniesAnonymous(t *testing.T) {
	mutations := 0
	a := NewAuthority(config.SessionConfig{Secret: "test-secret", TTLSec: 60})
	app := newTestApp(a, &mutations)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/delete", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, mutations)
}

func TestEstablish_GrantsAdmin(t *testing.T) {
	mutations := 0
	a := NewAuthority(config.SessionConfig{Secret: "test-secret", TTLSec: 60})
	app := newTestApp(a, &mutations)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	ck := sessionCookie(t, resp, a.CookieName())
	assert.NotEqual(t, adminValue, ck.Value, "cookie must not carry the flag in plaintext")
	assert.True(t, ck.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/delete", nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	resp, err = app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, mutations)
}

func TestResolve_ForgedCookieIsAnonymous(t *testing.T) {
	mutations := 0
	a := NewAuthority(config.SessionConfig{Secret: "test-secret", TTLSec: 60})
	app := newTestApp(a, &mutations)

	t.Run("plaintext flag", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/delete", nil)
		req.AddCookie(&http.Cookie{Name: a.CookieName(), Value: adminValue})
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})

	t.Run("cookie sealed with another secret", func(t *testing.T) {
		other := NewAuthority(config.SessionConfig{Secret: "other-secret", TTLSec: 60})
		otherApp := newTestApp(other, new(int))
		resp, err := otherApp.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		ck := sessionCookie(t, resp, other.CookieName())

		req := httptest.NewRequest(http.MethodPost, "/delete", nil)
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		resp, err = app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})

	assert.Equal(t, 0, mutations)
}

func TestClear_ExpiresCookie(t *testing.T) {
	a := NewAuthority(config.SessionConfig{Secret: "test-secret", TTLSec: 60})
	app := newTestApp(a, new(int))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil))

	require.NoError(t, err)
	ck := sessionCookie(t, resp, a.CookieName())
	assert.True(t, ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())))
}

func TestFromCtx_DefaultsToAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if FromCtx(c).IsAdmin() {
			return c.SendString("admin")
		}
		return c.SendString("anonymous")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeriveKey(t *testing.T) {
	assert.Equal(t, DeriveKey("a"), DeriveKey("a"))
	assert.NotEqual(t, DeriveKey("a"), DeriveKey("b"))
	assert.Len(t, DeriveKey("anything"), 44)
}

func TestNewAuthority_EmptySecretGeneratesKey(t *testing.T) {
	a := NewAuthority(config.SessionConfig{})
	b := NewAuthority(config.SessionConfig{})

	assert.NotEqual(t, a.key, b.key)
	assert.Equal(t, "microblog_session", a.CookieName())
}
