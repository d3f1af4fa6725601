package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockConfigStore implements interfaces.ConfigStore for testing.
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockConfigStore) SetString(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockConfigStore) GetBool(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockConfigStore) SetBool(ctx context.Context, key string, value bool) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockConfigStore) Name() string {
	return "mock"
}

func (m *MockConfigStore) Close() error {
	return nil
}
