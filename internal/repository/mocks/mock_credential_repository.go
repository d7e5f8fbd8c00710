package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"microblog/internal/model"
)

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) LoadAdmin(ctx context.Context) (*model.AdminCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminCredential), args.Error(1)
}
