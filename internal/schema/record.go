// Package schema defines the canonical invoice record produced by
// extraction, the static field classification table, and the JSON Schema
// guard applied to inference-supplied field payloads.
package schema

import (
	"github.com/google/uuid"

	"invosplit/internal/domain"
)

// ExtractedField carries one field value together with the tier that
// supplied it and a human-readable evidence string for audit.
type ExtractedField struct {
	Name       string      `json:"name"`
	Value      any         `json:"value"`
	Tier       domain.Tier `json:"tier"`
	Confidence float64     `json:"confidence"`
	Evidence   string      `json:"evidence"`
}

// LineItem is a single row of the invoice's item table. Order matches the
// source table row order.
type LineItem struct {
	Description   string              `json:"description"`
	ProductCode   string              `json:"product_code"`
	HSCode        string              `json:"hs_code"`
	OriginCountry string              `json:"origin_country"`
	Quantity      float64             `json:"quantity"`
	UnitPrice     float64             `json:"unit_price"`
	TotalAmount   float64             `json:"total_amount"`
	NetWeight     float64             `json:"net_weight"`
	GrossWeight   float64             `json:"gross_weight"`
	Currency      string              `json:"currency"`
	Type          domain.LineItemType `json:"type"`
}

// InvoiceRecord is the normalized output for one sub-document. It is
// created empty when extraction starts for a validated span, populated by
// the extraction orchestrator, finalized by the record normalizer and
// immutable thereafter.
type InvoiceRecord struct {
	SpanID uuid.UUID `json:"span_id"`
	Label  string    `json:"label"`

	InvoiceNumber   string `json:"invoice_number"`
	InvoiceDate     string `json:"invoice_date"`
	DueDate         string `json:"due_date"`
	SellerName      string `json:"seller_name"`
	SellerAddress   string `json:"seller_address"`
	SellerCountry   string `json:"seller_country"`
	SellerVATNumber string `json:"seller_vat_number"`
	BuyerName       string `json:"buyer_name"`
	BuyerAddress    string `json:"buyer_address"`
	BuyerCountry    string `json:"buyer_country"`
	BuyerVATNumber  string `json:"buyer_vat_number"`
	Currency        string `json:"currency"`
	Incoterms       string `json:"incoterms"`
	PaymentTerms    string `json:"payment_terms"`

	Subtotal         float64 `json:"subtotal"`
	TaxAmount        float64 `json:"tax_amount"`
	ShippingAmount   float64 `json:"shipping_amount"`
	AmountDue        float64 `json:"amount_due"`
	TotalNetWeight   float64 `json:"total_net_weight"`
	TotalGrossWeight float64 `json:"total_gross_weight"`

	// AmountDueComputed marks amount_due as derived from line items rather
	// than sourced from the document.
	AmountDueComputed bool `json:"amount_due_computed"`

	LineItems []LineItem `json:"line_items"`

	// Fields records tier, confidence and evidence per canonical field.
	Fields map[string]ExtractedField `json:"fields"`

	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NewInvoiceRecord creates an empty record for one validated span.
func NewInvoiceRecord(span domain.ValidatedSpan) *InvoiceRecord {
	return &InvoiceRecord{
		SpanID: span.ID,
		Label:  span.Label,
		Fields: make(map[string]ExtractedField),
	}
}

// Get returns the current value of a canonical scalar field as a string,
// or "" when unset. Numeric fields format with two decimals once set.
func (r *InvoiceRecord) Get(name string) any {
	switch name {
	case FieldInvoiceNumber:
		return r.InvoiceNumber
	case FieldInvoiceDate:
		return r.InvoiceDate
	case FieldDueDate:
		return r.DueDate
	case FieldSellerName:
		return r.SellerName
	case FieldSellerAddress:
		return r.SellerAddress
	case FieldSellerCountry:
		return r.SellerCountry
	case FieldSellerVATNumber:
		return r.SellerVATNumber
	case FieldBuyerName:
		return r.BuyerName
	case FieldBuyerAddress:
		return r.BuyerAddress
	case FieldBuyerCountry:
		return r.BuyerCountry
	case FieldBuyerVATNumber:
		return r.BuyerVATNumber
	case FieldCurrency:
		return r.Currency
	case FieldIncoterms:
		return r.Incoterms
	case FieldPaymentTerms:
		return r.PaymentTerms
	case FieldSubtotal:
		return r.Subtotal
	case FieldTaxAmount:
		return r.TaxAmount
	case FieldShippingAmount:
		return r.ShippingAmount
	case FieldAmountDue:
		return r.AmountDue
	case FieldTotalNetWeight:
		return r.TotalNetWeight
	case FieldTotalGrossWeight:
		return r.TotalGrossWeight
	}
	return nil
}

// Set assigns a canonical scalar field from an extracted value. String
// fields receive the string form; numeric fields are stored raw here and
// canonicalized later by the record normalizer.
func (r *InvoiceRecord) Set(name string, f ExtractedField) {
	switch name {
	case FieldInvoiceNumber:
		r.InvoiceNumber = asString(f.Value)
	case FieldInvoiceDate:
		r.InvoiceDate = asString(f.Value)
	case FieldDueDate:
		r.DueDate = asString(f.Value)
	case FieldSellerName:
		r.SellerName = asString(f.Value)
	case FieldSellerAddress:
		r.SellerAddress = asString(f.Value)
	case FieldSellerCountry:
		r.SellerCountry = asString(f.Value)
	case FieldSellerVATNumber:
		r.SellerVATNumber = asString(f.Value)
	case FieldBuyerName:
		r.BuyerName = asString(f.Value)
	case FieldBuyerAddress:
		r.BuyerAddress = asString(f.Value)
	case FieldBuyerCountry:
		r.BuyerCountry = asString(f.Value)
	case FieldBuyerVATNumber:
		r.BuyerVATNumber = asString(f.Value)
	case FieldCurrency:
		r.Currency = asString(f.Value)
	case FieldIncoterms:
		r.Incoterms = asString(f.Value)
	case FieldPaymentTerms:
		r.PaymentTerms = asString(f.Value)
	case FieldSubtotal:
		r.Subtotal = asFloat(f.Value)
	case FieldTaxAmount:
		r.TaxAmount = asFloat(f.Value)
	case FieldShippingAmount:
		r.ShippingAmount = asFloat(f.Value)
	case FieldAmountDue:
		r.AmountDue = asFloat(f.Value)
	case FieldTotalNetWeight:
		r.TotalNetWeight = asFloat(f.Value)
	case FieldTotalGrossWeight:
		r.TotalGrossWeight = asFloat(f.Value)
	default:
		return
	}
	f.Name = name
	r.Fields[name] = f
}

// Sourced reports whether a field already carries an extracted value.
// Presence is judged on the raw value in the Fields map, not the typed
// slot: a locale-formatted numeric like "6 834,99" only becomes a
// non-zero float later, in the record normalizer.
func (r *InvoiceRecord) Sourced(name string) bool {
	f, ok := r.Fields[name]
	return ok && !IsEmpty(f.Value)
}

// IsEmpty reports whether a field value counts as absent for merge
// purposes: nil, empty/whitespace string, or numeric zero.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return len(t) == 0 || len(stripSpace(t)) == 0
	case float64:
		return t == 0
	case int:
		return t == 0
	}
	return false
}

func stripSpace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
