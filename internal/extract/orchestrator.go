package extract

import (
	"context"
	"fmt"
	"log"

	"invosplit/internal/domain"
	"invosplit/internal/port"
	"invosplit/internal/schema"
)

// Orchestrator runs the three-tier extraction process for one
// sub-document: layout analysis, then the tier chain in fixed priority
// order, merging field-by-field with first-tier-wins precedence.
type Orchestrator struct {
	layout  port.LayoutAnalyzer
	sources []FieldSource
}

// NewOrchestrator creates an extraction orchestrator over an ordered tier
// chain. Sources must be supplied most-trusted first.
func NewOrchestrator(layout port.LayoutAnalyzer, sources ...FieldSource) *Orchestrator {
	return &Orchestrator{layout: layout, sources: sources}
}

// Extract produces the merged, evidence-annotated record for one validated
// span's sub-document. The returned record is not yet normalized; the
// record normalizer and confidence aggregation run afterwards. A field no
// tier can answer stays empty, which is not an error; tier call failures
// abort only this sub-document.
func (o *Orchestrator) Extract(ctx context.Context, span domain.ValidatedSpan, fileBytes []byte) (*schema.InvoiceRecord, error) {
	layout, err := o.layout.AnalyzeDocument(ctx, fileBytes)
	if err != nil {
		return nil, fmt.Errorf("layout analysis: %w", err)
	}

	rec := schema.NewInvoiceRecord(span)
	req := &Request{
		Span:      span,
		FileBytes: fileBytes,
		Layout:    layout,
		Record:    rec,
	}

	rec.LineItems = ExtractLineItems(layout)

	for _, source := range o.sources {
		missing := missingFields(rec)
		if len(missing) == 0 {
			break
		}
		fields, err := source.AttemptFields(ctx, req, missing)
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", source.Tier(), err)
		}
		mergeTier(rec, fields)
		log.Printf("extract.Orchestrator: span %s tier %s answered %d of %d missing fields",
			span.ID, source.Tier(), len(fields), len(missing))
	}

	return rec, nil
}
