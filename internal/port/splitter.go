package port

import (
	"context"

	"github.com/google/uuid"

	"invosplit/internal/domain"
)

// SplitMaterializer abstracts the low-level document manipulation that
// copies a page range into a new document. Each part is produced
// atomically; a failed span surfaces in its part's Err slot without
// affecting the other spans.
type SplitMaterializer interface {
	Split(ctx context.Context, source []byte, spans []domain.ValidatedSpan) ([]SplitResult, error)
}

// SplitResult is the outcome of materializing one validated span.
type SplitResult struct {
	SpanID uuid.UUID `json:"span_id"`
	Bytes  []byte    `json:"-"`
	Err    string    `json:"error,omitempty"`
}
