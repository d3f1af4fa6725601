package reports

import (
	"context"

	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockSink implements interfaces.ReportSink for testing.
type MockSink struct {
	mock.Mock
	SinkName string
}

func (m *MockSink) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSink) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

func (m *MockSink) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockSink) Name() string {
	return m.SinkName
}

func (m *MockSink) LocationURI() string {
	return "mock:" + m.SinkName
}
