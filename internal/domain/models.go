package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageRecord holds the layout-analysis text for a single physical page.
// Immutable once produced; the ordered slice of PageRecords for a bundle
// is the page corpus.
type PageRecord struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
}

// CandidateSpan is a raw boundary proposal from the inference oracle.
// Candidates may overlap, leave gaps, or be empty; they are consumed by
// reconciliation and never persisted beyond the batch row.
type CandidateSpan struct {
	Label      string  `json:"label"`
	StartPage  int     `json:"start_page"`
	EndPage    int     `json:"end_page"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ValidatedSpan is a reconciled page range covering exactly one logical
// sub-document. For a corpus of N pages the full ordered set of validated
// spans tiles [1,N]: sorted ascending, contiguous, no overlap, first span
// starts at 1 and last span ends at N.
type ValidatedSpan struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	StartPage  int       `json:"start_page"`
	EndPage    int       `json:"end_page"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
}

// PageCount returns the number of pages covered by the span.
func (s ValidatedSpan) PageCount() int {
	return s.EndPage - s.StartPage + 1
}

// SplitPart is one materialized sub-document produced from a validated span.
type SplitPart struct {
	SpanID uuid.UUID
	Bytes  []byte
	S3Key  string
}

// Batch is the persisted row for one uploaded document bundle.
type Batch struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	FileName        string          `db:"file_name" json:"file_name"`
	OriginalName    string          `db:"original_name" json:"original_name"`
	ContentType     string          `db:"content_type" json:"content_type"`
	FileSize        int64           `db:"file_size" json:"file_size"`
	S3Bucket        string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key           string          `db:"s3_key" json:"s3_key"`
	PageCount       int             `db:"page_count" json:"page_count"`
	State           BatchState      `db:"state" json:"state"`
	CandidateSpans  json.RawMessage `db:"candidate_spans" json:"candidate_spans"`
	ValidatedSpans  json.RawMessage `db:"validated_spans" json:"validated_spans"`
	Records         json.RawMessage `db:"records" json:"records"`
	SplitConfidence float64         `db:"split_confidence" json:"split_confidence"`
	ProcessingError string          `db:"processing_error" json:"processing_error"`
	ProcessedAt     *time.Time      `db:"processed_at" json:"processed_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
