package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockProtector is a mock implementation of protect.Protector.
type MockProtector struct {
	mock.Mock
}

func (m *MockProtector) Protect(plaintext []byte) ([]byte, error) {
	args := m.Called(plaintext)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockProtector) Unprotect(ciphertext []byte) ([]byte, error) {
	args := m.Called(ciphertext)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// PassthroughProtector returns its input unchanged; for tests that do not care about sealing.
type PassthroughProtector struct{}

func (PassthroughProtector) Protect(plaintext []byte) ([]byte, error) {
	return append([]byte(nil), plaintext...), nil
}

func (PassthroughProtector) Unprotect(ciphertext []byte) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}
