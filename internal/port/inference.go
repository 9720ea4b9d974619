package port

import (
	"context"
	"encoding/json"

	"invosplit/internal/domain"
)

// FieldRequest carries the context for one field-mode inference call: the
// partially filled record so far, the canonical names still missing, and
// layout excerpts to reason over.
type FieldRequest struct {
	Record        json.RawMessage `json:"record"`
	MissingFields []string        `json:"missing_fields"`
	PageText      string          `json:"page_text"`
}

// FieldAnswer is one field value proposed by the inference oracle.
type FieldAnswer struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// FieldResponse is the oracle's reply in field mode.
type FieldResponse struct {
	Fields map[string]FieldAnswer `json:"fields"`
}

// InferenceClient abstracts the semantic inference oracle in both of its
// modes. Boundary mode returns the raw natural-language reply; schema
// compliance is not guaranteed and callers must parse defensively.
type InferenceClient interface {
	ProposeBoundaries(ctx context.Context, pages []domain.PageRecord) (string, error)
	ExtractFields(ctx context.Context, req FieldRequest) (*FieldResponse, error)
}
