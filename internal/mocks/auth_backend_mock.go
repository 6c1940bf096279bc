package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/backend"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAuthBackend is a mock implementation of backend.AuthBackend.
type MockAuthBackend struct {
	mock.Mock
}

func (m *MockAuthBackend) Connect(ctx context.Context, endpoint string) (backend.Session, error) {
	args := m.Called(ctx, endpoint)
	session, _ := args.Get(0).(backend.Session)
	return session, args.Error(1)
}

// MockAuthSession is a mock implementation of backend.Session.
type MockAuthSession struct {
	mock.Mock
}

func (m *MockAuthSession) Authenticate(ctx context.Context, tokens *models.TokenBag) error {
	args := m.Called(ctx, tokens)
	return args.Error(0)
}

func (m *MockAuthSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
