package port

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"invosplit/internal/domain"
)

// BatchRepository defines the contract for batch persistence. All JSON
// column writers replace the whole column; there is no partial patching.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error)
	ListByState(ctx context.Context, state domain.BatchState, limit int) ([]domain.Batch, error)
	UpdateState(ctx context.Context, id uuid.UUID, state domain.BatchState) error
	SaveCandidateSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage) error
	SaveValidatedSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage, confidence float64, pageCount int) error
	SaveRecords(ctx context.Context, id uuid.UUID, records json.RawMessage) error
	SetError(ctx context.Context, id uuid.UUID, state domain.BatchState, message string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
