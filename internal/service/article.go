package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"microblog/internal/model"
	"microblog/internal/repository"
)

var (
	ErrNotFound = errors.New("article not found")
	ErrCorrupt  = errors.New("article document corrupt")
)

// ArticleService defines the use cases for reading and managing articles.
type ArticleService interface {
	// List returns every readable article, newest ID first.
	List(ctx context.Context) ([]model.Article, error)

	// Get returns a single article by its ID.
	Get(ctx context.Context, id int) (*model.Article, error)

	// Create stores a new article stamped with the current date and returns it with its allocated ID.
	Create(ctx context.Context, title, content string) (*model.Article, error)

	// Update overwrites title and content of an existing article and re-stamps its date.
	Update(ctx context.Context, id int, title, content string) (*model.Article, error)

	// Delete removes an article by ID.
	Delete(ctx context.Context, id int) error
}

// articleService is a concrete implementation of ArticleService.
type articleService struct {
	repo repository.ArticleRepository
	now  func() time.Time
}

// NewArticleService constructs a new ArticleService. A nil clock means time.Now.
func NewArticleService(repo repository.ArticleRepository, now func() time.Time) ArticleService {
	if now == nil {
		now = time.Now
	}
	return &articleService{repo: repo, now: now}
}

// List sorts explicitly since the directory listing order carries no meaning.
func (s *articleService) List(ctx context.Context) ([]model.Article, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (s *articleService) Get(ctx context.Context, id int) (*model.Article, error) {
	if id < 1 {
		return nil, ErrNotFound
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return a, nil
}

func (s *articleService) Create(ctx context.Context, title, content string) (*model.Article, error) {
	return s.repo.Create(ctx, &model.Article{
		Title:   title,
		Date:    s.stamp(),
		Content: content,
	})
}

func (s *articleService) Update(ctx context.Context, id int, title, content string) (*model.Article, error) {
	if id < 1 {
		return nil, ErrNotFound
	}
	a, err := s.repo.Update(ctx, &model.Article{
		ID:      id,
		Title:   title,
		Date:    s.stamp(),
		Content: content,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return a, nil
}

func (s *articleService) Delete(ctx context.Context, id int) error {
	if id < 1 {
		return ErrNotFound
	}
	return mapRepoErr(s.repo.Delete(ctx, id))
}

func (s *articleService) stamp() string {
	return s.now().Format(model.DateLayout)
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrCorrupt):
		return ErrCorrupt
	default:
		return err
	}
}
