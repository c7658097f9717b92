package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/storefront/internal/model"
)

// Authenticator is a mock of model.Authenticator.
type Authenticator struct {
	mock.Mock
}

var _ model.Authenticator = (*Authenticator)(nil)

func (m *Authenticator) ObtainToken(ctx context.Context, username, password string) (model.TokenPair, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *Authenticator) RefreshToken(ctx context.Context, refresh string) (model.TokenPair, error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *Authenticator) CurrentUser(ctx context.Context) (*model.Identity, error) {
	args := m.Called(ctx)
	identity, _ := args.Get(0).(*model.Identity)
	return identity, args.Error(1)
}
