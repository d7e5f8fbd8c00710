// Package mirror copies article writes to object storage.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strconv"

	"microblog/internal/logging"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/storage"
)

// KeyPrefix is the object key prefix under which mirrored articles are stored.
const KeyPrefix = "articles"

// ArticleMirror wraps an ArticleRepository and mirrors every successful create,
// update and delete to object storage. The wrapped repository stays the source
// of truth: mirror failures are logged and never returned.
type ArticleMirror struct {
	next  repository.ArticleRepository
	store storage.Storage
	log   *logging.Logger
}

// New wraps next with a mirror writing to store.
func New(next repository.ArticleRepository, store storage.Storage, log *logging.Logger) *ArticleMirror {
	if log == nil {
		log = logging.Discard()
	}
	return &ArticleMirror{next: next, store: store, log: log}
}

var _ repository.ArticleRepository = (*ArticleMirror)(nil)

// ObjectKey returns the mirrored object key for an article ID.
func ObjectKey(id int) string {
	return path.Join(KeyPrefix, repository.ArticleFilename(id))
}

// Metadata is the user metadata attached to a mirrored article object.
func Metadata(a *model.Article) map[string]string {
	return map[string]string{
		"article-id":   strconv.Itoa(a.ID),
		"article-date": a.Date,
	}
}

func (m *ArticleMirror) List(ctx context.Context) ([]model.Article, error) {
	return m.next.List(ctx)
}

func (m *ArticleMirror) FindByID(ctx context.Context, id int) (*model.Article, error) {
	return m.next.FindByID(ctx, id)
}

func (m *ArticleMirror) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	stored, err := m.next.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	m.put(ctx, stored)
	return stored, nil
}

func (m *ArticleMirror) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	stored, err := m.next.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	m.put(ctx, stored)
	return stored, nil
}

func (m *ArticleMirror) Delete(ctx context.Context, id int) error {
	if err := m.next.Delete(ctx, id); err != nil {
		return err
	}
	key := ObjectKey(id)
	if err := m.store.Delete(ctx, key); err != nil {
		m.log.Error("article_mirror_failed", err, map[string]any{
			"component": "mirror",
			"operation": "delete",
			"key":       key,
		})
	}
	return nil
}

func (m *ArticleMirror) put(ctx context.Context, a *model.Article) {
	key := ObjectKey(a.ID)
	b, err := json.Marshal(a)
	if err != nil {
		m.log.Error("article_mirror_failed", err, map[string]any{"component": "mirror", "operation": "encode", "key": key})
		return
	}
	info, err := m.store.Put(ctx, key, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
		Metadata:    Metadata(a),
	})
	if err != nil {
		m.log.Error("article_mirror_failed", err, map[string]any{
			"component": "mirror",
			"operation": "put",
			"key":       key,
		})
		return
	}
	m.log.Info("article_mirrored", map[string]any{
		"component": "mirror",
		"key":       info.Key,
		"etag":      info.ETag,
		"size":      info.Size,
	})
}
