package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSignInService is a mock implementation of the SignInGenerator interface.
type MockSignInService struct {
	mock.Mock
}

func (m *MockSignInService) SignIn(ctx context.Context, fingerprint uint32, parameters map[string]string) models.SignInResult {
	args := m.Called(ctx, fingerprint, parameters)
	return args.Get(0).(models.SignInResult)
}
