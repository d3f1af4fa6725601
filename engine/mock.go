package engine

import (
	"context"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockRemoteConfig implements interfaces.RemoteConfig for testing.
type MockRemoteConfig struct {
	mock.Mock
}

func (m *MockRemoteConfig) SetOption(ctx context.Context, key interfaces.OptionKey, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockRemoteConfig) GetOption(ctx context.Context, key interfaces.OptionKey) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteConfig) SetLocalOption(ctx context.Context, key interfaces.OptionKey, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockRemoteConfig) GetLocalOption(ctx context.Context, key interfaces.OptionKey) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteConfig) SetCredential(ctx context.Context, value string) error {
	return m.Called(ctx, value).Error(0)
}

func (m *MockRemoteConfig) GetIdentity(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteConfig) StartNetworkService(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRemoteConfig) RestartConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockController implements Controller for testing.
type MockController struct {
	mock.Mock
}

func (m *MockController) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockController) Restart(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
