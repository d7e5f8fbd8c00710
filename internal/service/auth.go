package service

import (
	"context"
	"errors"
	"fmt"

	"microblog/internal/password"
	"microblog/internal/repository"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable wraps repository.ErrNotFound or repository.ErrCorrupt
	// so callers can tell a missing credential file from a damaged one.
	ErrStoreUnavailable = errors.New("admin credential store unavailable")
)

// AuthService verifies the admin identity.
type AuthService interface {
	// Authenticate returns nil when username and password match the stored admin.
	Authenticate(ctx context.Context, username, password string) error
}

type authService struct {
	creds repository.CredentialRepository
}

// NewAuthService constructs an AuthService reading from creds on every call.
func NewAuthService(creds repository.CredentialRepository) AuthService {
	return &authService{creds: creds}
}

func (s *authService) Authenticate(ctx context.Context, username, pw string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if pw == "" {
		return ErrPasswordRequired
	}

	admin, err := s.creds.LoadAdmin(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrCorrupt) {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return fmt.Errorf("load admin: %w", err)
	}

	if username != admin.Username {
		return ErrInvalidCredentials
	}
	ok, err := password.Verify(admin.PasswordHash, pw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, repository.ErrCorrupt)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}
