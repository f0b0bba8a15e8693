package test

import (
	"github.com/stretchr/testify/mock"
	"k8s.io/client-go/kubernetes"
)

// MockClientSource is a mock implementation of handlers.ClientSource
type MockClientSource struct {
	mock.Mock
}

func (m *MockClientSource) Client() (kubernetes.Interface, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(kubernetes.Interface), args.Error(1)
}
