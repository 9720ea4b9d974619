package schema

import "invosplit/internal/domain"

// Canonical scalar field names.
const (
	FieldInvoiceNumber    = "invoice_number"
	FieldInvoiceDate      = "invoice_date"
	FieldDueDate          = "due_date"
	FieldSellerName       = "seller_name"
	FieldSellerAddress    = "seller_address"
	FieldSellerCountry    = "seller_country"
	FieldSellerVATNumber  = "seller_vat_number"
	FieldBuyerName        = "buyer_name"
	FieldBuyerAddress     = "buyer_address"
	FieldBuyerCountry     = "buyer_country"
	FieldBuyerVATNumber   = "buyer_vat_number"
	FieldCurrency         = "currency"
	FieldIncoterms        = "incoterms"
	FieldPaymentTerms     = "payment_terms"
	FieldSubtotal         = "subtotal"
	FieldTaxAmount        = "tax_amount"
	FieldShippingAmount   = "shipping_amount"
	FieldAmountDue        = "amount_due"
	FieldTotalNetWeight   = "total_net_weight"
	FieldTotalGrossWeight = "total_gross_weight"
)

// FieldKind drives which normalizer a field goes through.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindDate     FieldKind = "date"
	KindCurrency FieldKind = "currency"
	KindCountry  FieldKind = "country"
	KindNumber   FieldKind = "number"
)

// FieldSpec classifies one canonical field: its primary extraction tier
// plus the tier-specific descriptor (key-value label candidates for the
// deterministic tier, a directed question for the lookup tier). Fields left
// empty by their primary tier always remain candidates for the inference
// fallback.
type FieldSpec struct {
	Name string
	Kind FieldKind
	Tier domain.Tier

	// KVLabels are layout key-value pair labels addressed by the
	// deterministic tier, tried in order.
	KVLabels []string

	// Query is the directed question sent to the layout service by the
	// targeted lookup tier.
	Query string

	// Required fields produce a validation warning when still empty after
	// normalization.
	Required bool
}

// Fields is the static classification table, in canonical merge order.
var Fields = []FieldSpec{
	{Name: FieldInvoiceNumber, Kind: KindText, Tier: domain.TierDeterministic,
		KVLabels: []string{"invoice number", "invoice no", "invoice #", "rechnungsnummer", "facture no"},
		Query:    "What is the invoice number?", Required: true},
	{Name: FieldInvoiceDate, Kind: KindDate, Tier: domain.TierDeterministic,
		KVLabels: []string{"invoice date", "date of invoice", "rechnungsdatum", "date de facture"},
		Query:    "What is the invoice date?", Required: true},
	{Name: FieldDueDate, Kind: KindDate, Tier: domain.TierTargetedLookup,
		Query: "What is the payment due date?"},
	{Name: FieldSellerName, Kind: KindText, Tier: domain.TierDeterministic,
		KVLabels: []string{"seller", "vendor", "supplier", "sold by", "from"},
		Query:    "What is the name of the seller or supplier issuing this invoice?", Required: true},
	{Name: FieldSellerAddress, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What is the full postal address of the seller?"},
	{Name: FieldSellerCountry, Kind: KindCountry, Tier: domain.TierTargetedLookup,
		Query: "In which country is the seller located?"},
	{Name: FieldSellerVATNumber, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What is the seller's VAT or tax identification number?"},
	{Name: FieldBuyerName, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What is the name of the buyer or customer on this invoice?", Required: true},
	{Name: FieldBuyerAddress, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What is the full postal address of the buyer?"},
	{Name: FieldBuyerCountry, Kind: KindCountry, Tier: domain.TierTargetedLookup,
		Query: "In which country is the buyer located?"},
	{Name: FieldBuyerVATNumber, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What is the buyer's VAT or tax identification number?"},
	{Name: FieldCurrency, Kind: KindCurrency, Tier: domain.TierDeterministic,
		KVLabels: []string{"currency", "währung", "devise"},
		Query:    "What currency are the amounts on this invoice stated in?", Required: true},
	{Name: FieldIncoterms, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What incoterms (delivery terms) does this invoice specify?"},
	{Name: FieldPaymentTerms, Kind: KindText, Tier: domain.TierTargetedLookup,
		Query: "What payment terms does this invoice specify?"},
	{Name: FieldSubtotal, Kind: KindNumber, Tier: domain.TierTargetedLookup,
		Query: "What is the subtotal amount before taxes?"},
	{Name: FieldTaxAmount, Kind: KindNumber, Tier: domain.TierTargetedLookup,
		Query: "What is the total tax or VAT amount?"},
	{Name: FieldShippingAmount, Kind: KindNumber, Tier: domain.TierTargetedLookup,
		Query: "What is the shipping or freight charge?"},
	{Name: FieldAmountDue, Kind: KindNumber, Tier: domain.TierDeterministic,
		KVLabels: []string{"total", "amount due", "total due", "grand total", "gesamtbetrag", "total a payer"},
		Query:    "What is the total amount due on this invoice?", Required: true},
	{Name: FieldTotalNetWeight, Kind: KindNumber, Tier: domain.TierInferenceFallback},
	{Name: FieldTotalGrossWeight, Kind: KindNumber, Tier: domain.TierInferenceFallback},
}

// FieldByName returns the spec for a canonical field name.
func FieldByName(name string) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns all canonical field names in table order.
func FieldNames() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// Aliases maps field-name variants the extraction tiers may emit onto the
// canonical schema key. Applied only when the canonical key is still empty;
// canonical values are never overwritten by aliases.
var Aliases = map[string]string{
	"invoice_no":       FieldInvoiceNumber,
	"invoice_id":       FieldInvoiceNumber,
	"invoiceNumber":    FieldInvoiceNumber,
	"inv_number":       FieldInvoiceNumber,
	"document_number":  FieldInvoiceNumber,
	"date":             FieldInvoiceDate,
	"invoiceDate":      FieldInvoiceDate,
	"issue_date":       FieldInvoiceDate,
	"dueDate":          FieldDueDate,
	"payment_due_date": FieldDueDate,
	"vendor_name":      FieldSellerName,
	"supplier_name":    FieldSellerName,
	"seller":           FieldSellerName,
	"vendor":           FieldSellerName,
	"customer_name":    FieldBuyerName,
	"consignee_name":   FieldBuyerName,
	"buyer":            FieldBuyerName,
	"customer":         FieldBuyerName,
	"vendor_address":   FieldSellerAddress,
	"supplier_address": FieldSellerAddress,
	"customer_address": FieldBuyerAddress,
	"seller_vat":       FieldSellerVATNumber,
	"seller_tax_id":    FieldSellerVATNumber,
	"buyer_vat":        FieldBuyerVATNumber,
	"buyer_tax_id":     FieldBuyerVATNumber,
	"currency_code":    FieldCurrency,
	"total":            FieldAmountDue,
	"total_amount":     FieldAmountDue,
	"grand_total":      FieldAmountDue,
	"amount_total":     FieldAmountDue,
	"invoice_total":    FieldAmountDue,
	"net_total":        FieldSubtotal,
	"sub_total":        FieldSubtotal,
	"vat_amount":       FieldTaxAmount,
	"tax":              FieldTaxAmount,
	"freight_amount":   FieldShippingAmount,
	"shipping_cost":    FieldShippingAmount,
	"net_weight":       FieldTotalNetWeight,
	"gross_weight":     FieldTotalGrossWeight,
	"terms":            FieldPaymentTerms,
	"delivery_terms":   FieldIncoterms,
}
