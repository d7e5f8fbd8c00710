package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"microblog/internal/service"
	"microblog/internal/session"
)

// LoginPath is where the admin guard sends anonymous visitors.
const LoginPath = "/login"

// RegisterRoutes attaches the blog routes to app. Privileged routes run
// session.RequireAdmin first, so their handlers never execute for anonymous callers.
// now dates the article forms and should match the clock given to the article service.
func RegisterRoutes(app *fiber.App, articles service.ArticleService, auth service.AuthService, sessions *session.Authority, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	requireAdmin := session.RequireAdmin(LoginPath)

	app.Get("/healthz", LivenessProbe())

	app.Get("/", Home(articles))
	app.Get("/article/:id", ShowArticle(articles))

	app.Get("/admin", requireAdmin, Dashboard(articles))
	app.Get("/new", requireAdmin, NewArticleForm(now))
	app.Post("/new", requireAdmin, CreateArticle(articles))
	app.Get("/edit/:id", requireAdmin, EditArticleForm(articles, now))
	app.Post("/edit/:id", requireAdmin, UpdateArticle(articles))
	app.Post("/delete/:id", requireAdmin, DeleteArticle(articles))

	app.Get(LoginPath, LoginForm(sessions))
	app.Post(LoginPath, Login(auth, sessions))
	app.Get("/logout", Logout(sessions))
}

// LivenessProbe reports that the process is serving requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// render adds the fields the layout needs and renders view.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	data["Admin"] = session.FromCtx(c).IsAdmin()
	return c.Render(view, data)
}
