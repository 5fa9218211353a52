package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock implementation of the junos.Executor interface.
type MockExecutor struct {
	mock.Mock
}

// Get returns the mocked configuration reply for filter.
func (m *MockExecutor) Get(ctx context.Context, filter string) (string, error) {
	args := m.Called(ctx, filter)
	return args.String(0), args.Error(1)
}

// Load records a configuration load.
func (m *MockExecutor) Load(ctx context.Context, config string) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}
