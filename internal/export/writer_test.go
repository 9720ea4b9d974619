package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invosplit/internal/domain"
	"invosplit/internal/schema"
)

func sampleRecords() []schema.InvoiceRecord {
	return []schema.InvoiceRecord{
		{
			Label:           "Invoice A",
			InvoiceNumber:   "INV-001",
			InvoiceDate:     "2025-01-15",
			SellerName:      "Seller GmbH",
			SellerCountry:   "DE",
			SellerVATNumber: "DE123456789",
			BuyerName:       "Buyer Inc",
			BuyerCountry:    "US",
			Currency:        "EUR",
			Subtotal:        1000,
			TaxAmount:       190,
			AmountDue:       1190,
			Confidence:      0.87,
			Warnings:        []string{"missing required field buyer_vat_number"},
			LineItems: []schema.LineItem{
				{Description: "Widget", Quantity: 10, UnitPrice: 100, TotalAmount: 1000, Currency: "EUR", Type: domain.LineItemProduct},
			},
		},
		{
			Label: "Invoice B",
			Error: "extraction failed: layout analysis: service unavailable",
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 24)
	assert.Equal(t, "Label", row[0])
	assert.Equal(t, "Invoice Number", row[1])
	assert.Equal(t, "Error", row[23])
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecords(sampleRecords()))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[1]
	assert.Equal(t, "INV-001", first[1])
	assert.Equal(t, "Seller GmbH", first[4])
	assert.Equal(t, "1190.00", first[16])
	assert.Equal(t, "1", first[20])
	assert.Equal(t, "0.87", first[21])
	assert.Contains(t, first[22], "buyer_vat_number")

	// The failed record keeps its row with the error carried through.
	second := rows[2]
	assert.Equal(t, "Invoice B", second[0])
	assert.Empty(t, second[1])
	assert.Contains(t, second[23], "service unavailable")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Label", rows[0][0])
	assert.Equal(t, "INV-001", rows[1][1])

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Widget", items[1][1])
	assert.Equal(t, "product", items[1][11])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q3_invoices_2025", SanitizeFilename("Q3 invoices/2025"))
	assert.Equal(t, "export", SanitizeFilename("///"))
	assert.Equal(t, "a-b_c", SanitizeFilename("a-b_c"))
}
