package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invosplit/internal/domain"
	"invosplit/internal/extract"
	"invosplit/internal/port"
	"invosplit/internal/schema"
	"invosplit/mocks"
)

func span() domain.ValidatedSpan {
	return domain.ValidatedSpan{Label: "Invoice 1", StartPage: 1, EndPage: 2, Confidence: 0.9}
}

func layoutWithKV(pairs ...port.KeyValuePair) *port.LayoutResult {
	return &port.LayoutResult{
		Pages:         []domain.PageRecord{{PageNumber: 1, Text: "invoice text", WordCount: 2}},
		KeyValuePairs: pairs,
	}
}

func TestOrchestrator_DeterministicTierWins(t *testing.T) {
	layout := new(mocks.MockLayoutAnalyzer)
	layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(layoutWithKV(
		port.KeyValuePair{Key: "Invoice Number:", Value: "A", PageNumber: 1, Confidence: 0.95},
	), nil)
	layout.On("QueryFields", mock.Anything, mock.Anything, mock.Anything).Return(
		[]port.QueryAnswer{{Query: "What is the invoice number?", Answer: "B", Confidence: 0.9}}, nil)

	inf := new(mocks.MockInferenceClient)
	inf.On("ExtractFields", mock.Anything, mock.Anything).Return(&port.FieldResponse{}, nil)

	o := extract.NewOrchestrator(layout,
		extract.NewDeterministicSource(),
		extract.NewLookupSource(layout, 0),
		extract.NewInferenceSource(inf),
	)

	rec, err := o.Extract(context.Background(), span(), []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, "A", rec.InvoiceNumber)
	assert.Equal(t, domain.TierDeterministic, rec.Fields[schema.FieldInvoiceNumber].Tier)
}

func TestOrchestrator_LookupFillsWhatDeterministicMissed(t *testing.T) {
	layout := new(mocks.MockLayoutAnalyzer)
	layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(layoutWithKV(), nil)
	layout.On("QueryFields", mock.Anything, mock.Anything, mock.Anything).Return(
		[]port.QueryAnswer{
			{Query: "What is the invoice number?", Answer: "B", Confidence: 0.85, PageNumber: 1},
		}, nil)

	inf := new(mocks.MockInferenceClient)
	inf.On("ExtractFields", mock.Anything, mock.Anything).Return(&port.FieldResponse{}, nil)

	o := extract.NewOrchestrator(layout,
		extract.NewDeterministicSource(),
		extract.NewLookupSource(layout, 0),
		extract.NewInferenceSource(inf),
	)

	rec, err := o.Extract(context.Background(), span(), []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, "B", rec.InvoiceNumber)
	assert.Equal(t, domain.TierTargetedLookup, rec.Fields[schema.FieldInvoiceNumber].Tier)
}

func TestOrchestrator_InferenceFallbackReceivesMissingFields(t *testing.T) {
	layout := new(mocks.MockLayoutAnalyzer)
	layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(layoutWithKV(), nil)
	layout.On("QueryFields", mock.Anything, mock.Anything, mock.Anything).Return([]port.QueryAnswer{}, nil)

	inf := new(mocks.MockInferenceClient)
	var captured port.FieldRequest
	inf.On("ExtractFields", mock.Anything, mock.MatchedBy(func(req port.FieldRequest) bool {
		captured = req
		return true
	})).Return(&port.FieldResponse{
		Fields: map[string]port.FieldAnswer{
			schema.FieldTotalNetWeight: {Value: 12.5, Confidence: 0.6, Evidence: "summed from item weights"},
		},
	}, nil)

	o := extract.NewOrchestrator(layout,
		extract.NewDeterministicSource(),
		extract.NewLookupSource(layout, 0),
		extract.NewInferenceSource(inf),
	)

	rec, err := o.Extract(context.Background(), span(), []byte("pdf"))

	require.NoError(t, err)
	assert.Contains(t, captured.MissingFields, schema.FieldTotalNetWeight)
	assert.Equal(t, 12.5, rec.TotalNetWeight)
	assert.Equal(t, domain.TierInferenceFallback, rec.Fields[schema.FieldTotalNetWeight].Tier)
	assert.Equal(t, "summed from item weights", rec.Fields[schema.FieldTotalNetWeight].Evidence)
}

func TestOrchestrator_LayoutFailureAbortsSubDocument(t *testing.T) {
	layout := new(mocks.MockLayoutAnalyzer)
	layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(nil, errors.New("layout unavailable"))

	o := extract.NewOrchestrator(layout, extract.NewDeterministicSource())

	_, err := o.Extract(context.Background(), span(), []byte("pdf"))

	assert.Error(t, err)
}

func TestOrchestrator_ExtractsLineItemsFromTables(t *testing.T) {
	layout := new(mocks.MockLayoutAnalyzer)
	layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(&port.LayoutResult{
		Tables: []port.Table{{
			PageNumber: 1, RowCount: 3, ColumnCount: 4,
			Cells: []port.TableCell{
				{RowIndex: 0, ColumnIndex: 0, Content: "Description", IsHeader: true},
				{RowIndex: 0, ColumnIndex: 1, Content: "Qty", IsHeader: true},
				{RowIndex: 0, ColumnIndex: 2, Content: "Unit Price", IsHeader: true},
				{RowIndex: 0, ColumnIndex: 3, Content: "Amount", IsHeader: true},
				{RowIndex: 1, ColumnIndex: 0, Content: "Widget"},
				{RowIndex: 1, ColumnIndex: 1, Content: "2"},
				{RowIndex: 1, ColumnIndex: 2, Content: "1.189,01"},
				{RowIndex: 1, ColumnIndex: 3, Content: "2,378.02"},
				{RowIndex: 2, ColumnIndex: 0, Content: "Freight charge"},
				{RowIndex: 2, ColumnIndex: 3, Content: "50.00"},
			},
		}},
	}, nil)
	layout.On("QueryFields", mock.Anything, mock.Anything, mock.Anything).Return([]port.QueryAnswer{}, nil)

	inf := new(mocks.MockInferenceClient)
	inf.On("ExtractFields", mock.Anything, mock.Anything).Return(&port.FieldResponse{}, nil)

	o := extract.NewOrchestrator(layout,
		extract.NewDeterministicSource(),
		extract.NewLookupSource(layout, 0),
		extract.NewInferenceSource(inf),
	)

	rec, err := o.Extract(context.Background(), span(), []byte("pdf"))

	require.NoError(t, err)
	require.Len(t, rec.LineItems, 2)
	assert.Equal(t, "Widget", rec.LineItems[0].Description)
	assert.Equal(t, 2.0, rec.LineItems[0].Quantity)
	assert.Equal(t, 1189.01, rec.LineItems[0].UnitPrice)
	assert.Equal(t, 2378.02, rec.LineItems[0].TotalAmount)
	assert.Equal(t, domain.LineItemProduct, rec.LineItems[0].Type)
	assert.Equal(t, domain.LineItemShipping, rec.LineItems[1].Type)
}
