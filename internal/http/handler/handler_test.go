package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"microblog/internal/config"
	"microblog/internal/http/middleware"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/service"
	serviceMocks "microblog/internal/service/mocks"
	"microblog/internal/session"
)

type testServer struct {
	app      *fiber.App
	articles *serviceMocks.MockArticleService
	auth     *serviceMocks.MockAuthService
	sessions *session.Authority
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		articles: new(serviceMocks.MockArticleService),
		auth:     new(serviceMocks.MockAuthService),
		sessions: session.NewAuthority(config.SessionConfig{Secret: "handler-test", TTLSec: 300}),
	}
	ts.app = newApp(ts.articles, ts.auth, ts.sessions, fixedClock)
	return ts
}

var fixedClock = func() time.Time {
	return time.Date(2024, time.March, 7, 20, 30, 0, 0, time.UTC).In(time.FixedZone("NZDT", 13*60*60))
}

func newApp(articles service.ArticleService, auth service.AuthService, sessions *session.Authority, now func() time.Time) *fiber.App {
	app := fiber.New(Config(nil))
	app.Use(middleware.RequestID())
	app.Use(sessions.Encrypt())
	app.Use(sessions.Resolve())
	RegisterRoutes(app, articles, auth, sessions, now)
	return app
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func sessionCookieFrom(resp *http.Response, name string) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// adminCookie logs in through the real login route with an accepting auth mock.
func (ts *testServer) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	ts.auth.On("Authenticate", mock.Anything, "admin", "pw").Return(nil).Once()

	resp, err := ts.app.Test(formRequest(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"pw"}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	ck := sessionCookieFrom(resp, ts.sessions.CookieName())
	require.NotNil(t, ck)
	return &http.Cookie{Name: ck.Name, Value: ck.Value}
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHome(t *testing.T) {
	ts := newTestServer(t)
	items := []model.Article{{ID: 2, Title: "Second", Date: "02/Jan/2024"}, {ID: 1, Title: "First", Date: "01/Jan/2024"}}

	t.Run("anonymous sees home view", func(t *testing.T) {
		ts.articles.On("List", mock.Anything).Return(items, nil).Once()

		resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, "Second")
		assert.Contains(t, html, `href="/article/1"`)
		assert.NotContains(t, html, "Dashboard")
	})

	t.Run("admin sees dashboard view", func(t *testing.T) {
		ck := ts.adminCookie(t)
		ts.articles.On("List", mock.Anything).Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		resp, err := ts.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, "Dashboard")
		assert.Contains(t, html, `action="/delete/2"`)
	})

	t.Run("list error", func(t *testing.T) {
		ts.articles.On("List", mock.Anything).Return(nil, errors.New("read dir failed")).Once()

		resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, "Internal server error")
		assert.NotContains(t, html, "read dir failed")
	})

	ts.articles.AssertExpectations(t)
}

func TestShowArticle(t *testing.T) {
	ts := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		ts.articles.On("Get", mock.Anything, 3).Return(&model.Article{ID: 3, Title: "Hello", Date: "07/Mar/2024", Content: "Body text"}, nil).Once()

		resp, _ := ts.app.Test(httptest.NewRequest(http.MethodGet, "/article/3", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, "Hello")
		assert.Contains(t, html, "Body text")
		assert.Contains(t, html, "07/Mar/2024")
	})

	t.Run("not found", func(t *testing.T) {
		ts.articles.On("Get", mock.Anything, 4).Return(nil, service.ErrNotFound).Once()

		resp, _ := ts.app.Test(httptest.NewRequest(http.MethodGet, "/article/4", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body(t, resp), "Article not found")
	})

	t.Run("corrupt", func(t *testing.T) {
		ts.articles.On("Get", mock.Anything, 5).Return(nil, service.ErrCorrupt).Once()

		resp, _ := ts.app.Test(httptest.NewRequest(http.MethodGet, "/article/5", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body(t, resp), "Error reading article")
	})

	for _, raw := range []string{"abc", "0", "-1", "%2B2"} {
		t.Run("invalid id "+raw, func(t *testing.T) {
			resp, _ := ts.app.Test(httptest.NewRequest(http.MethodGet, "/article/"+raw, nil))

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}

	ts.articles.AssertExpectations(t)
}

func TestPrivilegedRoutes_RedirectAnonymous(t *testing.T) {
	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/admin"},
		{http.MethodGet, "/new"},
		{http.MethodPost, "/new"},
		{http.MethodGet, "/edit/1"},
		{http.MethodPost, "/edit/1"},
		{http.MethodPost, "/delete/1"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.target, func(t *testing.T) {
			ts := newTestServer(t)

			req := formRequest(r.method, r.target, url.Values{"title": {"t"}, "content": {"c"}})
			resp, err := ts.app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, LoginPath, resp.Header.Get("Location"))
			assert.Empty(t, ts.articles.Calls, "article service must not be touched")
		})
	}
}

func TestCreateArticle(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	ts.articles.On("Create", mock.Anything, "Hello", "World").Return(&model.Article{ID: 1, Title: "Hello", Content: "World"}, nil).Once()

	req := formRequest(http.MethodPost, "/new", url.Values{"title": {"Hello"}, "content": {"World"}})
	req.AddCookie(ck)
	resp, err := ts.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
	ts.articles.AssertExpectations(t)
}

func TestNewArticleForm(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	req := httptest.NewRequest(http.MethodGet, "/new", nil)
	req.AddCookie(ck)
	resp, err := ts.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, `action="/new"`)
	assert.Contains(t, html, "08/Mar/2024", "form is dated by the injected clock")
}

func TestEditArticle(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	t.Run("form prefilled", func(t *testing.T) {
		ts.articles.On("Get", mock.Anything, 2).Return(&model.Article{ID: 2, Title: "Old title", Content: "Old body"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/edit/2", nil)
		req.AddCookie(ck)
		resp, _ := ts.app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, `value="Old title"`)
		assert.Contains(t, html, "Old body")
		assert.Contains(t, html, "08/Mar/2024")
	})

	t.Run("form for missing article", func(t *testing.T) {
		ts.articles.On("Get", mock.Anything, 9).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/edit/9", nil)
		req.AddCookie(ck)
		resp, _ := ts.app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body(t, resp), "The article does not exist")
	})

	t.Run("update success", func(t *testing.T) {
		ts.articles.On("Update", mock.Anything, 2, "New title", "New body").Return(&model.Article{ID: 2}, nil).Once()

		req := formRequest(http.MethodPost, "/edit/2", url.Values{"title": {"New title"}, "content": {"New body"}})
		req.AddCookie(ck)
		resp, _ := ts.app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin", resp.Header.Get("Location"))
	})

	t.Run("update missing article", func(t *testing.T) {
		ts.articles.On("Update", mock.Anything, 9, "t", "c").Return(nil, service.ErrNotFound).Once()

		req := formRequest(http.MethodPost, "/edit/9", url.Values{"title": {"t"}, "content": {"c"}})
		req.AddCookie(ck)
		resp, _ := ts.app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body(t, resp), "The article does not exist")
	})

	ts.articles.AssertExpectations(t)
}

func TestDeleteArticle(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	tests := []struct {
		name       string
		id         int
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", id: 1, wantStatus: http.StatusFound},
		{name: "not found", id: 7, svcErr: service.ErrNotFound, wantStatus: http.StatusNotFound, wantBody: "The article does not exist"},
		{name: "io error", id: 8, svcErr: errors.New("permission denied"), wantStatus: http.StatusInternalServerError, wantBody: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.articles.On("Delete", mock.Anything, tt.id).Return(tt.svcErr).Once()

			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/delete/%d", tt.id), nil)
			req.AddCookie(ck)
			resp, err := ts.app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Contains(t, body(t, resp), tt.wantBody)
			}
		})
	}

	ts.articles.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		authErr    error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing username",
			form:       url.Values{"password": {"pw"}},
			authErr:    service.ErrUsernameRequired,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Must input username",
		},
		{
			name:       "missing password",
			form:       url.Values{"username": {"admin"}},
			authErr:    service.ErrPasswordRequired,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Must input password",
		},
		{
			name:       "store missing",
			form:       url.Values{"username": {"admin"}, "password": {"pw"}},
			authErr:    fmt.Errorf("%w: %w", service.ErrStoreUnavailable, repository.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   "Admin info does not exist",
		},
		{
			name:       "store corrupt",
			form:       url.Values{"username": {"admin"}, "password": {"pw"}},
			authErr:    fmt.Errorf("%w: %w", service.ErrStoreUnavailable, repository.ErrCorrupt),
			wantStatus: http.StatusNotFound,
			wantBody:   "Admin info is corrupted",
		},
		{
			name:       "invalid credentials",
			form:       url.Values{"username": {"admin"}, "password": {"nope"}},
			authErr:    service.ErrInvalidCredentials,
			wantStatus: http.StatusForbidden,
			wantBody:   "Invalid username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.On("Authenticate", mock.Anything, tt.form.Get("username"), tt.form.Get("password")).Return(tt.authErr).Once()

			resp, err := ts.app.Test(formRequest(http.MethodPost, "/login", tt.form))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, body(t, resp), tt.wantBody)
			ts.auth.AssertExpectations(t)
		})
	}
}

func TestLogin_SuccessGrantsAdmin(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	ts.articles.On("List", mock.Anything).Return([]model.Article{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(ck)
	resp, err := ts.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Dashboard")
	ts.articles.AssertExpectations(t)
}

func TestLoginForm_ClearsSession(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.adminCookie(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(ck)
	resp, err := ts.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `action="/login"`)
	cleared := sessionCookieFrom(resp, ts.sessions.CookieName())
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0 || cleared.Expires.Unix() <= 0)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotNil(t, sessionCookieFrom(resp, ts.sessions.CookieName()))
}

func TestRouting(t *testing.T) {
	ts := newTestServer(t)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-42")
		resp, _ := ts.app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		html := body(t, resp)
		assert.Contains(t, html, "Page not found")
		assert.Contains(t, html, "rid-42")
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := ts.app.Test(httptest.NewRequest(http.MethodGet, "/delete/1", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Contains(t, body(t, resp), "Method not allowed")
	})
}
