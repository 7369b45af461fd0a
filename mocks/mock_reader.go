package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

// MockReader is a mock implementation of api.Reader.
type MockReader struct {
	mock.Mock
}

func (m *MockReader) Read(ctx context.Context, data []byte) ([]api.Page, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Page), args.Error(1)
}
