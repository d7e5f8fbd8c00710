// Package filesystem implements the repositories on top of plain JSON files.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"microblog/internal/logging"
	"microblog/internal/model"
	"microblog/internal/repository"
)

const tracerName = "microblog/internal/repository/filesystem"

// ArticleFS stores one JSON document per article in a single directory.
// There is no locking: concurrent writers to the same ID race and the last rename wins.
type ArticleFS struct {
	dir    string
	log    *logging.Logger
	tracer trace.Tracer
}

// NewArticleFS creates a repository rooted at dir. The directory must exist.
func NewArticleFS(dir string, log *logging.Logger) *ArticleFS {
	if log == nil {
		log = logging.Discard()
	}
	return &ArticleFS{dir: dir, log: log, tracer: otel.Tracer(tracerName)}
}

var _ repository.ArticleRepository = (*ArticleFS)(nil)

// Dir returns the article directory.
func (r *ArticleFS) Dir() string {
	return r.dir
}

// List reads every well-formed article file. Entries that cannot be read or
// parsed are logged and skipped so one bad document does not hide the rest.
func (r *ArticleFS) List(ctx context.Context) ([]model.Article, error) {
	_, span := r.tracer.Start(ctx, "ArticleFS.List")
	defer span.End()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("read article dir: %w", err))
	}

	items := make([]model.Article, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := repository.ParseArticleFilename(e.Name())
		if !ok {
			continue
		}
		a, err := r.read(id)
		if err != nil {
			r.log.Error("article_skipped", err, map[string]any{
				"component": "repository",
				"file":      e.Name(),
			})
			continue
		}
		items = append(items, *a)
	}
	span.SetAttributes(attribute.Int("articles.count", len(items)))
	return items, nil
}

// FindByID returns the article for id, ErrNotFound or ErrCorrupt.
func (r *ArticleFS) FindByID(ctx context.Context, id int) (*model.Article, error) {
	_, span := r.tracer.Start(ctx, "ArticleFS.FindByID", trace.WithAttributes(attribute.Int("article.id", id)))
	defer span.End()

	a, err := r.read(id)
	if err != nil {
		return nil, spanError(span, err)
	}
	return a, nil
}

// Create scans the directory for the highest existing ID and writes a at the next one.
func (r *ArticleFS) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	_, span := r.tracer.Start(ctx, "ArticleFS.Create")
	defer span.End()

	ids, err := r.existingIDs()
	if err != nil {
		return nil, spanError(span, err)
	}

	out := *a
	out.ID = repository.NextID(ids)
	span.SetAttributes(attribute.Int("article.id", out.ID))

	if err := r.write(&out); err != nil {
		return nil, spanError(span, err)
	}
	return &out, nil
}

// Update overwrites an existing article in full.
func (r *ArticleFS) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	_, span := r.tracer.Start(ctx, "ArticleFS.Update", trace.WithAttributes(attribute.Int("article.id", a.ID)))
	defer span.End()

	if _, err := os.Stat(r.path(a.ID)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, spanError(span, repository.ErrNotFound)
		}
		return nil, spanError(span, fmt.Errorf("stat article %d: %w", a.ID, err))
	}

	out := *a
	if err := r.write(&out); err != nil {
		return nil, spanError(span, err)
	}
	return &out, nil
}

// Delete removes the article file for id.
func (r *ArticleFS) Delete(ctx context.Context, id int) error {
	_, span := r.tracer.Start(ctx, "ArticleFS.Delete", trace.WithAttributes(attribute.Int("article.id", id)))
	defer span.End()

	if id < 1 {
		return spanError(span, repository.ErrNotFound)
	}
	if err := os.Remove(r.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return spanError(span, repository.ErrNotFound)
		}
		return spanError(span, fmt.Errorf("remove article %d: %w", id, err))
	}
	return nil
}

func (r *ArticleFS) path(id int) string {
	return filepath.Join(r.dir, repository.ArticleFilename(id))
}

func (r *ArticleFS) read(id int) (*model.Article, error) {
	if id < 1 {
		return nil, repository.ErrNotFound
	}
	b, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("read article %d: %w", id, err)
	}
	var a model.Article
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%w: article %d: %v", repository.ErrCorrupt, id, err)
	}
	// the filename is the key
	a.ID = id
	return &a, nil
}

func (r *ArticleFS) write(a *model.Article) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode article %d: %w", a.ID, err)
	}
	if err := writeFileAtomic(r.path(a.ID), b, 0o644); err != nil {
		return fmt.Errorf("write article %d: %w", a.ID, err)
	}
	return nil
}

func (r *ArticleFS) existingIDs() ([]int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read article dir: %w", err)
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := repository.ParseArticleFilename(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// spanError records err on span unless it is an expected not-found.
func spanError(span trace.Span, err error) error {
	if !errors.Is(err, repository.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
