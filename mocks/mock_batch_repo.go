package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invosplit/internal/domain"
)

// MockBatchRepo is a mock implementation of port.BatchRepository.
type MockBatchRepo struct {
	mock.Mock
}

func (m *MockBatchRepo) Create(ctx context.Context, batch *domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepo) List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Batch), args.Int(1), args.Error(2)
}

func (m *MockBatchRepo) ListByState(ctx context.Context, state domain.BatchState, limit int) ([]domain.Batch, error) {
	args := m.Called(ctx, state, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}

func (m *MockBatchRepo) UpdateState(ctx context.Context, id uuid.UUID, state domain.BatchState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockBatchRepo) SaveCandidateSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage) error {
	args := m.Called(ctx, id, spans)
	return args.Error(0)
}

func (m *MockBatchRepo) SaveValidatedSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage, confidence float64, pageCount int) error {
	args := m.Called(ctx, id, spans, confidence, pageCount)
	return args.Error(0)
}

func (m *MockBatchRepo) SaveRecords(ctx context.Context, id uuid.UUID, records json.RawMessage) error {
	args := m.Called(ctx, id, records)
	return args.Error(0)
}

func (m *MockBatchRepo) SetError(ctx context.Context, id uuid.UUID, state domain.BatchState, message string) error {
	args := m.Called(ctx, id, state, message)
	return args.Error(0)
}

func (m *MockBatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
