package zfs

import (
	"context"

	"github.com/samhug/zfs-remote-keyloader/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockKeyLoader mocks the interfaces.KeyLoader interface
type MockKeyLoader struct {
	mock.Mock
}

// KeyStatus mocks the KeyStatus method
func (m *MockKeyLoader) KeyStatus(ctx context.Context, dataset string) (interfaces.KeyStatus, error) {
	args := m.Called(ctx, dataset)
	return args.Get(0).(interfaces.KeyStatus), args.Error(1)
}

// LoadKey mocks the LoadKey method
func (m *MockKeyLoader) LoadKey(ctx context.Context, dataset string, key []byte) error {
	args := m.Called(ctx, dataset, key)
	return args.Error(0)
}
