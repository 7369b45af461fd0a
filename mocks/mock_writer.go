package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

// MockWriter is a mock implementation of api.Writer.
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(ctx context.Context, records []api.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}
