package split

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// DefaultPageByteBudget caps the per-page text sent to the oracle so large
// bundles stay inside its input limits.
const DefaultPageByteBudget = 1500

// Detection is the outcome of one boundary-detection run.
type Detection struct {
	Candidates []domain.CandidateSpan
	Spans      []domain.ValidatedSpan
	Confidence float64
}

// Detector orchestrates boundary detection: one oracle call per bundle,
// defensive parsing of the reply, reconciliation into a tiling.
type Detector struct {
	client         port.InferenceClient
	pageByteBudget int
}

// NewDetector creates a Detector. A non-positive byte budget falls back to
// the default.
func NewDetector(client port.InferenceClient, pageByteBudget int) *Detector {
	if pageByteBudget <= 0 {
		pageByteBudget = DefaultPageByteBudget
	}
	return &Detector{client: client, pageByteBudget: pageByteBudget}
}

// Detect proposes and reconciles sub-document boundaries for the page
// corpus. Oracle failures and unparseable replies degrade to a single
// full-range span at low confidence; only an empty corpus yields no spans.
func (d *Detector) Detect(ctx context.Context, pages []domain.PageRecord) (*Detection, error) {
	totalPages := len(pages)
	if totalPages == 0 {
		return &Detection{}, nil
	}

	truncated := d.truncatePages(pages)

	reply, err := d.client.ProposeBoundaries(ctx, truncated)
	if err != nil {
		return nil, fmt.Errorf("proposing boundaries: %w", err)
	}

	candidates, err := parseCandidates(reply)
	if err != nil {
		// an unparseable reply is recovered locally, never fatal
		log.Printf("split.Detector: unparseable boundary reply, falling back to single span: %v", err)
		candidates = fallbackCandidates(totalPages)
	}

	spans := Reconcile(candidates, totalPages)

	var sum float64
	for _, s := range spans {
		sum += s.Confidence
	}
	confidence := 0.0
	if len(spans) > 0 {
		confidence = sum / float64(len(spans))
	}

	return &Detection{
		Candidates: candidates,
		Spans:      spans,
		Confidence: confidence,
	}, nil
}

func (d *Detector) truncatePages(pages []domain.PageRecord) []domain.PageRecord {
	out := make([]domain.PageRecord, len(pages))
	for i, p := range pages {
		if len(p.Text) > d.pageByteBudget {
			cut := d.pageByteBudget
			// back off to a rune boundary so the cut never splits a
			// multi-byte character
			for cut > 0 && !utf8.RuneStart(p.Text[cut]) {
				cut--
			}
			p.Text = p.Text[:cut]
		}
		out[i] = p
	}
	return out
}

func fallbackCandidates(totalPages int) []domain.CandidateSpan {
	return []domain.CandidateSpan{{
		Label:      "Document 1",
		StartPage:  1,
		EndPage:    totalPages,
		Confidence: FallbackConfidence,
		Rationale:  "boundary detection unavailable; full bundle treated as one document",
	}}
}

// parseCandidates extracts a JSON array of candidate spans from a raw
// oracle reply. Replies are frequently wrapped in markdown fences or prose,
// so the array is located by bracket scan before unmarshaling.
func parseCandidates(reply string) ([]domain.CandidateSpan, error) {
	cleaned := strings.TrimSpace(reply)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var candidates []domain.CandidateSpan
	if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
