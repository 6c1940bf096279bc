package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSuggestionProvider emits Candidates through the callback and returns the mocked error.
type MockSuggestionProvider struct {
	mock.Mock
	ProviderName string
	Candidates   []models.Profile
}

func (m *MockSuggestionProvider) Name() string {
	return m.ProviderName
}

func (m *MockSuggestionProvider) GetProfiles(ctx context.Context, emit func(models.Profile)) error {
	args := m.Called(ctx)
	for _, c := range m.Candidates {
		emit(c)
	}
	return args.Error(0)
}
