package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invosplit/internal/port"
)

// MockLayoutAnalyzer is a mock implementation of port.LayoutAnalyzer.
type MockLayoutAnalyzer struct {
	mock.Mock
}

func (m *MockLayoutAnalyzer) AnalyzeDocument(ctx context.Context, fileBytes []byte) (*port.LayoutResult, error) {
	args := m.Called(ctx, fileBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.LayoutResult), args.Error(1)
}

func (m *MockLayoutAnalyzer) QueryFields(ctx context.Context, fileBytes []byte, queries []string) ([]port.QueryAnswer, error) {
	args := m.Called(ctx, fileBytes, queries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.QueryAnswer), args.Error(1)
}
