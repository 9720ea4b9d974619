package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// MockSplitMaterializer is a mock implementation of port.SplitMaterializer.
type MockSplitMaterializer struct {
	mock.Mock
}

func (m *MockSplitMaterializer) Split(ctx context.Context, source []byte, spans []domain.ValidatedSpan) ([]port.SplitResult, error) {
	args := m.Called(ctx, source, spans)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.SplitResult), args.Error(1)
}
