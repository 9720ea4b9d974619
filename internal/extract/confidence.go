package extract

import (
	"invosplit/internal/domain"
	"invosplit/internal/schema"
)

// AggregateConfidence computes the single scalar confidence for a
// sub-document record: the tier-weighted mean of per-field confidences
// scaled by the extraction success rate (populated fields over expected
// fields). An empty record scores 0.
func AggregateConfidence(rec *schema.InvoiceRecord) float64 {
	if rec == nil || len(rec.Fields) == 0 {
		return 0
	}

	var sum float64
	for _, f := range rec.Fields {
		sum += f.Confidence * domain.TierWeight(f.Tier)
	}
	mean := sum / float64(len(rec.Fields))

	fillRate := float64(len(rec.Fields)) / float64(len(schema.Fields))
	if fillRate > 1 {
		fillRate = 1
	}

	score := mean * fillRate
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
