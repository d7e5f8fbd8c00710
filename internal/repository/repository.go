// Package repository contains data access layer abstractions.
// Implementations live in subpackages (filesystem, mirror) inside this directory.
package repository

import (
	"context"
	"errors"

	"microblog/internal/model"
)

var (
	// ErrNotFound is returned when the requested document or credential file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a stored document exists but cannot be parsed.
	ErrCorrupt = errors.New("corrupt document")
)

// ArticleRepository defines data access for articles. No business logic here:
// timestamps and ordering are the caller's concern.
type ArticleRepository interface {
	// List returns every readable article in storage order.
	List(ctx context.Context) ([]model.Article, error)

	// FindByID returns the article stored for id.
	FindByID(ctx context.Context, id int) (*model.Article, error)

	// Create allocates the next ID, stores the article under it and returns the stored copy.
	// Any ID set on a is ignored.
	Create(ctx context.Context, a *model.Article) (*model.Article, error)

	// Update overwrites the stored article with the same ID. It returns ErrNotFound
	// and writes nothing if no such article exists.
	Update(ctx context.Context, a *model.Article) (*model.Article, error)

	// Delete removes the article stored for id, or returns ErrNotFound.
	Delete(ctx context.Context, id int) error
}

// CredentialRepository reads the single admin identity. It is read-only.
type CredentialRepository interface {
	LoadAdmin(ctx context.Context) (*model.AdminCredential, error)
}
