package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore is a mock implementation of the ProfileStore interface.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Count() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockProfileStore) ProfileAt(index int) (models.Profile, error) {
	args := m.Called(index)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *MockProfileStore) ProfileByFingerprint(fingerprint uint32) (models.Profile, error) {
	args := m.Called(fingerprint)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *MockProfileStore) Profiles() []models.Profile {
	args := m.Called()
	profiles, _ := args.Get(0).([]models.Profile)
	return profiles
}

func (m *MockProfileStore) PrimaryProfile() (uint32, bool) {
	args := m.Called()
	return args.Get(0).(uint32), args.Bool(1)
}

func (m *MockProfileStore) Promote(fingerprint uint32) error {
	args := m.Called(fingerprint)
	return args.Error(0)
}

func (m *MockProfileStore) SetPrimaryProfile(fingerprint uint32) error {
	args := m.Called(fingerprint)
	return args.Error(0)
}

func (m *MockProfileStore) Save(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
