// Package split turns raw boundary proposals from the inference oracle
// into a validated, gap-free partition of a bundle's page range.
package split

import (
	"sort"

	"github.com/google/uuid"

	"invosplit/internal/domain"
)

const (
	// FallbackConfidence is assigned to spans invented by reconciliation
	// rather than proposed by the oracle.
	FallbackConfidence = 0.3

	fallbackRationale = "no boundaries detected; treating the full bundle as a single document"
	trailingRationale = "trailing pages not covered by any candidate"
)

// Reconcile converts candidate spans into a validated tiling of [1,N].
// Candidates are trusted in ascending start-page order; a candidate that
// regresses past the cursor is clamped forward, one that starts beyond the
// document (or is fully consumed by its predecessor) is discarded, and
// pages no candidate claims are absorbed into the next emitted span. The
// returned spans always satisfy the tiling invariant: sorted, contiguous,
// first span starts at 1, last span ends at totalPages.
func Reconcile(candidates []domain.CandidateSpan, totalPages int) []domain.ValidatedSpan {
	if totalPages < 1 {
		return nil
	}

	if len(candidates) == 0 {
		return []domain.ValidatedSpan{{
			ID:         uuid.New(),
			Label:      "Document 1",
			StartPage:  1,
			EndPage:    totalPages,
			Confidence: FallbackConfidence,
			Rationale:  fallbackRationale,
		}}
	}

	sorted := make([]domain.CandidateSpan, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPage < sorted[j].StartPage
	})

	var spans []domain.ValidatedSpan
	cursor := 1
	for _, c := range sorted {
		start := c.StartPage
		if start < cursor {
			start = cursor
		}
		if start > totalPages {
			// entirely beyond the document or fully consumed by the
			// previous span
			continue
		}
		// a candidate starting past the cursor would leave uncovered
		// pages; they are absorbed into this span
		start = cursor
		end := c.EndPage
		if end > totalPages {
			end = totalPages
		}
		if end < start {
			end = start
		}
		spans = append(spans, domain.ValidatedSpan{
			ID:         uuid.New(),
			Label:      c.Label,
			StartPage:  start,
			EndPage:    end,
			Confidence: c.Confidence,
			Rationale:  c.Rationale,
		})
		cursor = end + 1
	}

	if cursor <= totalPages {
		if len(spans) > 0 {
			spans[len(spans)-1].EndPage = totalPages
		} else {
			spans = append(spans, domain.ValidatedSpan{
				ID:         uuid.New(),
				Label:      "Document 1",
				StartPage:  cursor,
				EndPage:    totalPages,
				Confidence: FallbackConfidence,
				Rationale:  trailingRationale,
			})
		}
	}

	return spans
}

// IsTiling reports whether spans form a valid tiling of [1,totalPages].
func IsTiling(spans []domain.ValidatedSpan, totalPages int) bool {
	if len(spans) == 0 {
		return false
	}
	if spans[0].StartPage != 1 || spans[len(spans)-1].EndPage != totalPages {
		return false
	}
	for i, s := range spans {
		if s.StartPage > s.EndPage {
			return false
		}
		if i > 0 && spans[i-1].EndPage+1 != s.StartPage {
			return false
		}
	}
	return true
}
