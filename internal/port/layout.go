package port

import (
	"context"

	"invosplit/internal/domain"
)

// TableCell is one cell of a detected table, addressed by row and column.
type TableCell struct {
	RowIndex    int    `json:"row_index"`
	ColumnIndex int    `json:"column_index"`
	Content     string `json:"content"`
	IsHeader    bool   `json:"is_header"`
}

// Table is a detected table with its page anchor.
type Table struct {
	PageNumber  int         `json:"page_number"`
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Cells       []TableCell `json:"cells"`
}

// KeyValuePair is a detected label/value pair with the layout service's own
// confidence.
type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	PageNumber int     `json:"page_number"`
	Confidence float64 `json:"confidence"`
}

// LayoutResult is the structured output of layout analysis for one
// document.
type LayoutResult struct {
	DocumentRef   string              `json:"document_ref"`
	Pages         []domain.PageRecord `json:"pages"`
	Tables        []Table             `json:"tables"`
	KeyValuePairs []KeyValuePair      `json:"key_value_pairs"`
}

// QueryAnswer is the layout service's answer to one directed query.
type QueryAnswer struct {
	Query      string  `json:"query"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	PageNumber int     `json:"page_number"`
}

// LayoutAnalyzer abstracts the optical layout analysis service. Failures
// surface as errors, never panics; the raw analysis itself is a black box.
type LayoutAnalyzer interface {
	// AnalyzeDocument runs full layout analysis over raw document bytes.
	AnalyzeDocument(ctx context.Context, fileBytes []byte) (*LayoutResult, error)
	// QueryFields asks directed questions about a previously analyzed
	// document. Callers must respect the service's per-request query cap
	// by batching.
	QueryFields(ctx context.Context, fileBytes []byte, queries []string) ([]QueryAnswer, error)
}
