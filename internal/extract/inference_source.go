package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"invosplit/internal/domain"
	"invosplit/internal/port"
	"invosplit/internal/schema"
)

// InferenceSource is the last-resort tier: one inference call per
// sub-document that receives the partially filled record plus the missing
// field list. It also covers fields needing cross-item arithmetic, such as
// weight aggregation, that neither structured tier can answer.
type InferenceSource struct {
	client port.InferenceClient
}

// NewInferenceSource creates the inference fallback tier.
func NewInferenceSource(client port.InferenceClient) *InferenceSource {
	return &InferenceSource{client: client}
}

func (s *InferenceSource) Tier() domain.Tier {
	return domain.TierInferenceFallback
}

func (s *InferenceSource) AttemptFields(ctx context.Context, req *Request, missing []string) (map[string]schema.ExtractedField, error) {
	if len(missing) == 0 {
		return nil, nil
	}

	recordJSON, err := json.Marshal(req.Record)
	if err != nil {
		return nil, fmt.Errorf("marshaling current record: %w", err)
	}

	resp, err := s.client.ExtractFields(ctx, port.FieldRequest{
		Record:        recordJSON,
		MissingFields: missing,
		PageText:      corpusText(req),
	})
	if err != nil {
		return nil, fmt.Errorf("inference field call: %w", err)
	}

	out := make(map[string]schema.ExtractedField)
	for name, answer := range resp.Fields {
		if err := validateAnswer(answer); err != nil {
			// shape violations are rejected before merge; the field is
			// treated as absent
			log.Printf("extract.InferenceSource: dropping field %q: %v", name, err)
			continue
		}
		if schema.IsEmpty(answer.Value) {
			continue
		}
		out[name] = schema.ExtractedField{
			Name:       name,
			Value:      answer.Value,
			Tier:       domain.TierInferenceFallback,
			Confidence: answer.Confidence,
			Evidence:   answer.Evidence,
		}
	}
	return out, nil
}

func validateAnswer(a port.FieldAnswer) error {
	entry := map[string]any{
		"value":      a.Value,
		"confidence": a.Confidence,
		"evidence":   a.Evidence,
	}
	return schema.ValidateFieldPayload(entry)
}

func corpusText(req *Request) string {
	if req.Layout == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range req.Layout.Pages {
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}
