// Package extract runs the three-tier field extraction process for one
// sub-document and merges the results into a single evidence-annotated
// invoice record.
package extract

import (
	"context"

	"invosplit/internal/domain"
	"invosplit/internal/port"
	"invosplit/internal/schema"
)

// Request carries the per-sub-document inputs shared by all tiers.
// Record is the in-progress invoice record, visible to later tiers as
// earlier tiers fill it.
type Request struct {
	Span      domain.ValidatedSpan
	FileBytes []byte
	Layout    *port.LayoutResult
	Record    *schema.InvoiceRecord
}

// FieldSource is one extraction tier. Sources are evaluated in fixed
// priority order; each attempts only the fields still missing and returns
// whatever it can answer. Absent fields are simply omitted, never an
// error.
type FieldSource interface {
	Tier() domain.Tier
	AttemptFields(ctx context.Context, req *Request, missing []string) (map[string]schema.ExtractedField, error)
}
