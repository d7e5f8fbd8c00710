package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// CredentialFS reads the admin identity from a single-record JSON file.
// The file is re-read on every call; provisioning happens out of band.
type CredentialFS struct {
	path string
}

// NewCredentialFS creates a read-only credential store backed by path.
func NewCredentialFS(path string) *CredentialFS {
	return &CredentialFS{path: path}
}

var _ repository.CredentialRepository = (*CredentialFS)(nil)

// LoadAdmin returns the stored admin, ErrNotFound when the file is missing,
// or ErrCorrupt when it does not hold a username and password hash.
func (s *CredentialFS) LoadAdmin(ctx context.Context) (*model.AdminCredential, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("read admin file: %w", err)
	}

	var cred model.AdminCredential
	if err := json.Unmarshal(b, &cred); err != nil {
		return nil, fmt.Errorf("%w: admin file: %v", repository.ErrCorrupt, err)
	}
	if cred.Username == "" || cred.PasswordHash == "" {
		return nil, fmt.Errorf("%w: admin file: username and password are required", repository.ErrCorrupt)
	}
	return &cred, nil
}

// WriteAdmin provisions the admin file at path, replacing any previous one.
// The server itself never calls it.
func WriteAdmin(path string, cred model.AdminCredential) error {
	if cred.Username == "" || cred.PasswordHash == "" {
		return fmt.Errorf("%w: username and password are required", repository.ErrCorrupt)
	}
	b, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal admin: %w", err)
	}
	if err := writeFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write admin file: %w", err)
	}
	return nil
}
