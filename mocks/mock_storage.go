package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of storage.Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockBackend is a mock implementation of storage.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
