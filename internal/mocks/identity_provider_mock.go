package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider is a mock implementation of the IdentityProvider interface.
type MockIdentityProvider struct {
	mock.Mock
	Key string
}

func NewMockIdentityProvider(key string) *MockIdentityProvider {
	return &MockIdentityProvider{Key: key}
}

func (m *MockIdentityProvider) IdentifierKey() string {
	return m.Key
}

func (m *MockIdentityProvider) ProcessIdentity(ctx context.Context, profile models.Profile, parameters map[string]string) (*models.IdentityResult, error) {
	args := m.Called(ctx, profile, parameters)
	result, _ := args.Get(0).(*models.IdentityResult) // Handle nil case
	return result, args.Error(1)
}
