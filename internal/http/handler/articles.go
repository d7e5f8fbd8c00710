package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/session"
)

const (
	msgArticleNotFound = "Article not found"
	msgArticleMissing  = "The article does not exist"
	msgArticleCorrupt  = "Error reading article"
)

// articleID parses the :id route param. Anything but a positive decimal
// number is treated like a missing article.
func articleID(c *fiber.Ctx) (int, bool) {
	raw := c.Params("id")
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Home lists articles; an admin session gets the dashboard view instead.
func Home(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := articles.List(c.UserContext())
		if err != nil {
			return err
		}
		view := "home"
		if session.FromCtx(c).IsAdmin() {
			view = "admin"
		}
		return render(c, view, fiber.Map{"Articles": items})
	}
}

// ShowArticle renders a single article.
func ShowArticle(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := articleID(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, msgArticleNotFound)
		}
		a, err := articles.Get(c.UserContext(), id)
		if err != nil {
			return articleError(c, err, msgArticleNotFound)
		}
		return render(c, "article", fiber.Map{"Title": a.Title, "Article": a})
	}
}

// Dashboard lists articles with edit and delete controls.
func Dashboard(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := articles.List(c.UserContext())
		if err != nil {
			return err
		}
		return render(c, "admin", fiber.Map{"Title": "Dashboard", "Articles": items})
	}
}

func NewArticleForm(now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "new", fiber.Map{"Title": "New article", "Now": now().Format(model.DateLayout)})
	}
}

// CreateArticle stores the submitted title and content and returns to the dashboard.
func CreateArticle(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := articles.Create(c.UserContext(), c.FormValue("title"), c.FormValue("content")); err != nil {
			return err
		}
		return c.Redirect("/admin", fiber.StatusFound)
	}
}

func EditArticleForm(articles service.ArticleService, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := articleID(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, msgArticleMissing)
		}
		a, err := articles.Get(c.UserContext(), id)
		if err != nil {
			return articleError(c, err, msgArticleMissing)
		}
		return render(c, "edit", fiber.Map{
			"Title":   "Edit article",
			"Article": a,
			"Now":     now().Format(model.DateLayout),
		})
	}
}

// UpdateArticle overwrites an existing article; it never creates one.
func UpdateArticle(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := articleID(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, msgArticleMissing)
		}
		if _, err := articles.Update(c.UserContext(), id, c.FormValue("title"), c.FormValue("content")); err != nil {
			return articleError(c, err, msgArticleMissing)
		}
		return c.Redirect("/admin", fiber.StatusFound)
	}
}

func DeleteArticle(articles service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := articleID(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, msgArticleMissing)
		}
		if err := articles.Delete(c.UserContext(), id); err != nil {
			return articleError(c, err, msgArticleMissing)
		}
		return c.Redirect("/admin", fiber.StatusFound)
	}
}

// articleError translates service errors into error pages; anything
// unexpected goes to the global error handler.
func articleError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrCorrupt):
		return writeError(c, fiber.StatusInternalServerError, msgArticleCorrupt)
	default:
		return err
	}
}
