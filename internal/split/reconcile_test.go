package split

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invosplit/internal/domain"
)

func TestReconcile_EmptyInput(t *testing.T) {
	spans := Reconcile(nil, 7)

	require.Len(t, spans, 1)
	assert.Equal(t, 1, spans[0].StartPage)
	assert.Equal(t, 7, spans[0].EndPage)
	assert.Equal(t, FallbackConfidence, spans[0].Confidence)
	assert.NotEmpty(t, spans[0].Rationale)
}

func TestReconcile_OverlappingCandidates(t *testing.T) {
	// 5-page bundle, oracle proposes [1,2] and [2,4]: the second span's
	// start is clamped past the cursor and its end extended to cover the
	// trailing page.
	candidates := []domain.CandidateSpan{
		{Label: "Invoice A", StartPage: 1, EndPage: 2, Confidence: 0.9},
		{Label: "Invoice B", StartPage: 2, EndPage: 4, Confidence: 0.8},
	}

	spans := Reconcile(candidates, 5)

	require.Len(t, spans, 2)
	assert.Equal(t, 1, spans[0].StartPage)
	assert.Equal(t, 2, spans[0].EndPage)
	assert.Equal(t, 3, spans[1].StartPage)
	assert.Equal(t, 5, spans[1].EndPage)
}

func TestReconcile_GapBetweenCandidates(t *testing.T) {
	candidates := []domain.CandidateSpan{
		{StartPage: 1, EndPage: 2, Confidence: 0.9},
		{StartPage: 5, EndPage: 6, Confidence: 0.9},
	}

	spans := Reconcile(candidates, 6)

	require.Len(t, spans, 2)
	// uncovered pages 3-4 are absorbed into the second span
	assert.Equal(t, 3, spans[1].StartPage)
	assert.Equal(t, 6, spans[1].EndPage)
	assert.True(t, IsTiling(spans, 6))
}

func TestReconcile_CandidateBeyondDocument(t *testing.T) {
	candidates := []domain.CandidateSpan{
		{StartPage: 1, EndPage: 3, Confidence: 0.9},
		{StartPage: 9, EndPage: 12, Confidence: 0.9},
	}

	spans := Reconcile(candidates, 4)

	require.Len(t, spans, 1)
	assert.Equal(t, 1, spans[0].StartPage)
	assert.Equal(t, 4, spans[0].EndPage)
}

func TestReconcile_TrailingPagesExtendLastSpan(t *testing.T) {
	candidates := []domain.CandidateSpan{
		{StartPage: 1, EndPage: 3, Confidence: 0.9},
	}

	spans := Reconcile(candidates, 10)

	require.Len(t, spans, 1)
	assert.Equal(t, 10, spans[0].EndPage)
}

func TestReconcile_UnsortedCandidates(t *testing.T) {
	candidates := []domain.CandidateSpan{
		{Label: "B", StartPage: 4, EndPage: 6, Confidence: 0.8},
		{Label: "A", StartPage: 1, EndPage: 3, Confidence: 0.9},
	}

	spans := Reconcile(candidates, 6)

	require.Len(t, spans, 2)
	assert.Equal(t, "A", spans[0].Label)
	assert.Equal(t, "B", spans[1].Label)
	assert.True(t, IsTiling(spans, 6))
}

func TestReconcile_Idempotent(t *testing.T) {
	valid := []domain.CandidateSpan{
		{Label: "A", StartPage: 1, EndPage: 2, Confidence: 0.9},
		{Label: "B", StartPage: 3, EndPage: 5, Confidence: 0.8},
	}

	spans := Reconcile(valid, 5)

	require.Len(t, spans, 2)
	for i, s := range spans {
		assert.Equal(t, valid[i].StartPage, s.StartPage)
		assert.Equal(t, valid[i].EndPage, s.EndPage)
		assert.Equal(t, valid[i].Confidence, s.Confidence)
	}
}

func TestReconcile_TilingInvariantHoldsForRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		totalPages := 1 + rng.Intn(30)
		n := rng.Intn(8)
		candidates := make([]domain.CandidateSpan, n)
		for i := range candidates {
			start := 1 + rng.Intn(totalPages+10)
			candidates[i] = domain.CandidateSpan{
				StartPage:  start,
				EndPage:    start + rng.Intn(10) - 3,
				Confidence: rng.Float64(),
			}
		}

		spans := Reconcile(candidates, totalPages)

		require.True(t, IsTiling(spans, totalPages),
			"trial %d: candidates %+v over %d pages produced %+v", trial, candidates, totalPages, spans)
	}
}

func TestReconcile_ZeroPages(t *testing.T) {
	assert.Nil(t, Reconcile(nil, 0))
}
