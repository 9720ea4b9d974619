package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// MockInferenceClient is a mock implementation of port.InferenceClient.
type MockInferenceClient struct {
	mock.Mock
}

func (m *MockInferenceClient) ProposeBoundaries(ctx context.Context, pages []domain.PageRecord) (string, error) {
	args := m.Called(ctx, pages)
	return args.String(0), args.Error(1)
}

func (m *MockInferenceClient) ExtractFields(ctx context.Context, req port.FieldRequest) (*port.FieldResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.FieldResponse), args.Error(1)
}
