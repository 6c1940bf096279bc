package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProfileBlobRepository is a mock implementation of the ProfileBlobRepository interface.
type MockProfileBlobRepository struct {
	mock.Mock
}

func (m *MockProfileBlobRepository) ReadProfileBlob(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	blob, _ := args.Get(0).([]byte)
	return blob, args.Error(1)
}

func (m *MockProfileBlobRepository) WriteProfileBlob(ctx context.Context, blob []byte) error {
	args := m.Called(ctx, blob)
	return args.Error(0)
}
