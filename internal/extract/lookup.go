package extract

import (
	"context"
	"fmt"
	"strings"

	"invosplit/internal/domain"
	"invosplit/internal/port"
	"invosplit/internal/schema"
)

// DefaultQueryBatchSize is the layout service's maximum query count per
// request. Empirical service limit, kept configurable.
const DefaultQueryBatchSize = 20

// LookupSource resolves fields via bounded-size directed queries to the
// layout service, batched to respect its per-request query cap.
type LookupSource struct {
	layout    port.LayoutAnalyzer
	batchSize int
}

// NewLookupSource creates the targeted lookup tier. A non-positive batch
// size falls back to the default cap.
func NewLookupSource(layout port.LayoutAnalyzer, batchSize int) *LookupSource {
	if batchSize <= 0 {
		batchSize = DefaultQueryBatchSize
	}
	return &LookupSource{layout: layout, batchSize: batchSize}
}

func (s *LookupSource) Tier() domain.Tier {
	return domain.TierTargetedLookup
}

func (s *LookupSource) AttemptFields(ctx context.Context, req *Request, missing []string) (map[string]schema.ExtractedField, error) {
	queryToField := make(map[string]string)
	var queries []string
	for _, name := range missing {
		spec, ok := schema.FieldByName(name)
		if !ok || spec.Query == "" {
			continue
		}
		queries = append(queries, spec.Query)
		queryToField[spec.Query] = name
	}
	if len(queries) == 0 {
		return nil, nil
	}

	out := make(map[string]schema.ExtractedField)
	for start := 0; start < len(queries); start += s.batchSize {
		end := start + s.batchSize
		if end > len(queries) {
			end = len(queries)
		}
		answers, err := s.layout.QueryFields(ctx, req.FileBytes, queries[start:end])
		if err != nil {
			return nil, fmt.Errorf("layout query batch: %w", err)
		}
		for _, a := range answers {
			name, ok := queryToField[a.Query]
			if !ok || strings.TrimSpace(a.Answer) == "" {
				continue
			}
			out[name] = schema.ExtractedField{
				Name:       name,
				Value:      strings.TrimSpace(a.Answer),
				Tier:       domain.TierTargetedLookup,
				Confidence: a.Confidence,
				Evidence:   fmt.Sprintf("layout query answer on page %d", a.PageNumber),
			}
		}
	}
	return out, nil
}
