package normalize

import (
	"fmt"
	"log"

	"invosplit/internal/schema"
)

// Guardrail holds the plausibility thresholds for the unit-price check.
// The defaults are domain-tuned constants, not derived values, so they stay
// configurable.
type Guardrail struct {
	RatioHigh float64
	RatioLow  float64
}

// DefaultGuardrail returns the stock unit-price thresholds.
func DefaultGuardrail() Guardrail {
	return Guardrail{RatioHigh: 50, RatioLow: 0.02}
}

// Record finalizes a merged invoice record in place: date fields go through
// ToISODate, currency fields through NormalizeCurrencyCode, country fields
// through NormalizeCountry, every numeric through ParseAmbiguousNumber,
// then the unit-price guardrail runs over the line items and a missing
// amount_due is derived from them. Fields that fail normalization are
// reported on the record's warning list, never as an error.
func Record(r *schema.InvoiceRecord, g Guardrail) {
	for _, spec := range schema.Fields {
		raw, sourced := r.Fields[spec.Name]
		switch spec.Kind {
		case schema.KindDate:
			normalizeDateField(r, spec.Name)
		case schema.KindCurrency:
			normalizeCurrencyField(r, spec.Name)
		case schema.KindCountry:
			normalizeCountryField(r, spec.Name)
		case schema.KindNumber:
			if sourced {
				setNumeric(r, spec.Name, ParseAmbiguousNumber(schema.AsString(raw.Value)))
			}
		}
		if spec.Required && schema.IsEmpty(r.Get(spec.Name)) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("required field %s is missing", spec.Name))
		}
	}

	for i := range r.LineItems {
		normalizeLineItem(&r.LineItems[i], g)
	}

	if r.AmountDue == 0 && len(r.LineItems) > 0 {
		var sum float64
		for _, item := range r.LineItems {
			sum += item.TotalAmount
		}
		r.AmountDue = Round2(sum)
		r.AmountDueComputed = true
	}
}

func normalizeLineItem(item *schema.LineItem, g Guardrail) {
	if item.OriginCountry != "" {
		if code, ok := NormalizeCountry(item.OriginCountry); ok {
			item.OriginCountry = code
		}
	}
	if item.Currency != "" {
		if code, ok := NormalizeCurrencyCode(item.Currency); ok {
			item.Currency = code
		}
	}

	// Unit-price guardrail: when price x quantity is wildly inconsistent
	// with the row total, one of the three was misread. The total and
	// quantity are trusted over the unit price.
	if item.Quantity > 0 && item.TotalAmount > 0 && item.UnitPrice > 0 {
		ratio := (item.UnitPrice * item.Quantity) / item.TotalAmount
		if ratio > g.RatioHigh || ratio < g.RatioLow {
			corrected := Round2(item.TotalAmount / item.Quantity)
			log.Printf("normalize.Record: unit price %.4f implausible (ratio %.2f), corrected to %.2f",
				item.UnitPrice, ratio, corrected)
			item.UnitPrice = corrected
		}
	}
}

func normalizeDateField(r *schema.InvoiceRecord, name string) {
	raw := schema.AsString(r.Get(name))
	if raw == "" {
		return
	}
	iso, ok := ToISODate(raw)
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: unparseable date %q", name, raw))
		return
	}
	setString(r, name, iso)
}

func normalizeCurrencyField(r *schema.InvoiceRecord, name string) {
	raw := schema.AsString(r.Get(name))
	if raw == "" {
		return
	}
	code, ok := NormalizeCurrencyCode(raw)
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: unrecognized currency %q", name, raw))
		setString(r, name, "")
		return
	}
	setString(r, name, code)
}

func normalizeCountryField(r *schema.InvoiceRecord, name string) {
	raw := schema.AsString(r.Get(name))
	if raw == "" {
		return
	}
	code, ok := NormalizeCountry(raw)
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: unresolvable country %q", name, raw))
		setString(r, name, "")
		return
	}
	setString(r, name, code)
}

func setString(r *schema.InvoiceRecord, name, val string) {
	f := r.Fields[name]
	f.Name = name
	f.Value = val
	r.Fields[name] = f
	switch name {
	case schema.FieldInvoiceDate:
		r.InvoiceDate = val
	case schema.FieldDueDate:
		r.DueDate = val
	case schema.FieldCurrency:
		r.Currency = val
	case schema.FieldSellerCountry:
		r.SellerCountry = val
	case schema.FieldBuyerCountry:
		r.BuyerCountry = val
	}
}

func setNumeric(r *schema.InvoiceRecord, name string, val float64) {
	switch name {
	case schema.FieldSubtotal:
		r.Subtotal = val
	case schema.FieldTaxAmount:
		r.TaxAmount = val
	case schema.FieldShippingAmount:
		r.ShippingAmount = val
	case schema.FieldAmountDue:
		r.AmountDue = val
	case schema.FieldTotalNetWeight:
		r.TotalNetWeight = val
	case schema.FieldTotalGrossWeight:
		r.TotalGrossWeight = val
	}
}
