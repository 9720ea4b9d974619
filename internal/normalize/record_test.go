package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invosplit/internal/domain"
	"invosplit/internal/schema"
)

func testRecord() *schema.InvoiceRecord {
	return schema.NewInvoiceRecord(domain.ValidatedSpan{Label: "Invoice 1", StartPage: 1, EndPage: 2})
}

func TestRecord_GuardrailCorrectsImplausibleUnitPrice(t *testing.T) {
	r := testRecord()
	r.InvoiceNumber = "INV-1"
	r.LineItems = []schema.LineItem{
		{Description: "Widget", Quantity: 10, TotalAmount: 100, UnitPrice: 5000},
	}

	Record(r, DefaultGuardrail())

	// ratio 500 exceeds the high threshold; unit price is rebuilt from
	// total and quantity.
	assert.Equal(t, 10.0, r.LineItems[0].UnitPrice)
}

func TestRecord_GuardrailLeavesConsistentItemsAlone(t *testing.T) {
	r := testRecord()
	r.LineItems = []schema.LineItem{
		{Description: "Widget", Quantity: 2, TotalAmount: 50, UnitPrice: 25},
	}

	Record(r, DefaultGuardrail())

	assert.Equal(t, 25.0, r.LineItems[0].UnitPrice)
}

func TestRecord_GuardrailLowRatio(t *testing.T) {
	r := testRecord()
	r.LineItems = []schema.LineItem{
		{Quantity: 10, TotalAmount: 1000, UnitPrice: 0.01},
	}

	Record(r, DefaultGuardrail())

	// ratio 0.0001 is below the low threshold
	assert.Equal(t, 100.0, r.LineItems[0].UnitPrice)
}

func TestRecord_GuardrailSkipsItemsWithMissingValues(t *testing.T) {
	r := testRecord()
	r.LineItems = []schema.LineItem{
		{Quantity: 0, TotalAmount: 100, UnitPrice: 5000},
	}

	Record(r, DefaultGuardrail())

	assert.Equal(t, 5000.0, r.LineItems[0].UnitPrice)
}

func TestRecord_DerivesAmountDueFromLineItems(t *testing.T) {
	r := testRecord()
	r.LineItems = []schema.LineItem{
		{TotalAmount: 100.50},
		{TotalAmount: 49.50},
	}

	Record(r, DefaultGuardrail())

	assert.Equal(t, 150.0, r.AmountDue)
	assert.True(t, r.AmountDueComputed)
}

func TestRecord_DoesNotOverrideSourcedAmountDue(t *testing.T) {
	r := testRecord()
	r.Set(schema.FieldAmountDue, schema.ExtractedField{Value: 200.0, Tier: domain.TierDeterministic})
	r.LineItems = []schema.LineItem{{TotalAmount: 100}}

	Record(r, DefaultGuardrail())

	assert.Equal(t, 200.0, r.AmountDue)
	assert.False(t, r.AmountDueComputed)
}

func TestRecord_NormalizesDatesCurrenciesCountries(t *testing.T) {
	r := testRecord()
	r.Set(schema.FieldInvoiceDate, schema.ExtractedField{Value: "21.09.2025", Tier: domain.TierDeterministic})
	r.Set(schema.FieldCurrency, schema.ExtractedField{Value: "€", Tier: domain.TierDeterministic})
	r.Set(schema.FieldSellerCountry, schema.ExtractedField{Value: "Deutschland", Tier: domain.TierTargetedLookup})

	Record(r, DefaultGuardrail())

	assert.Equal(t, "2025-09-21", r.InvoiceDate)
	assert.Equal(t, "EUR", r.Currency)
	assert.Equal(t, "DE", r.SellerCountry)
}

func TestRecord_ParsesLocaleAmbiguousNumerics(t *testing.T) {
	r := testRecord()
	r.Set(schema.FieldSubtotal, schema.ExtractedField{Value: "6 834,99", Tier: domain.TierTargetedLookup})
	r.Set(schema.FieldAmountDue, schema.ExtractedField{Value: "2,378.02", Tier: domain.TierDeterministic})

	Record(r, DefaultGuardrail())

	assert.Equal(t, 6834.99, r.Subtotal)
	assert.Equal(t, 2378.02, r.AmountDue)
}

func TestRecord_WarnsOnMissingRequiredFields(t *testing.T) {
	r := testRecord()

	Record(r, DefaultGuardrail())

	assert.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings, "required field invoice_number is missing")
}

func TestRecord_WarnsOnUnparseableDate(t *testing.T) {
	r := testRecord()
	r.Set(schema.FieldInvoiceDate, schema.ExtractedField{Value: "sometime soon", Tier: domain.TierInferenceFallback})

	Record(r, DefaultGuardrail())

	assert.Contains(t, r.Warnings, `invoice_date: unparseable date "sometime soon"`)
}
