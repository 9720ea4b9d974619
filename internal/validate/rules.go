package validate

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"invosplit/internal/schema"
)

// mathTolerance absorbs rounding differences between the document's own
// arithmetic and ours. One currency unit covers round-off lines and
// per-row rounding drift.
const mathTolerance = 1.00

type checkFunc func(r *schema.InvoiceRecord) []Result

// rule is the common carrier for all built-in rules.
type rule struct {
	key   string
	name  string
	check checkFunc
}

func (v *rule) RuleKey() string  { return v.key }
func (v *rule) RuleName() string { return v.name }
func (v *rule) Check(r *schema.InvoiceRecord) []Result {
	return v.check(r)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= mathTolerance
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func mathResult(passed bool, fieldPath, expected, actual, ruleName string) Result {
	msg := fmt.Sprintf("%s: %s matches", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s mismatch (expected %s, got %s)", ruleName, fieldPath, expected, actual)
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected, ActualValue: actual, Message: msg,
	}
}

// vatPattern accepts the common VAT/tax registration shapes: an optional
// two-letter country prefix followed by 2-13 alphanumerics.
var vatPattern = regexp.MustCompile(`^[A-Z]{2}[A-Za-z0-9 .-]{2,13}$|^[0-9]{2,15}$`)

// MathRules returns the arithmetic consistency rules.
func MathRules() []Rule {
	return []Rule{
		&rule{
			key: "math.line_item.total", name: "Math: Line Item Total",
			check: func(r *schema.InvoiceRecord) []Result {
				var results []Result
				for i := range r.LineItems {
					item := &r.LineItems[i]
					if item.Quantity == 0 || item.UnitPrice == 0 || item.TotalAmount == 0 {
						continue
					}
					fp := fmt.Sprintf("line_items[%d].total_amount", i)
					expected := item.Quantity * item.UnitPrice
					passed := approxEqual(item.TotalAmount, expected)
					results = append(results, mathResult(passed, fp, fmtf(expected), fmtf(item.TotalAmount), "Math: Line Item Total"))
				}
				return results
			},
		},
		&rule{
			key: "math.amount_due", name: "Math: Amount Due",
			check: func(r *schema.InvoiceRecord) []Result {
				if r.AmountDue == 0 || r.Subtotal == 0 {
					return nil
				}
				expected := r.Subtotal + r.TaxAmount + r.ShippingAmount
				passed := approxEqual(r.AmountDue, expected)
				return []Result{mathResult(passed, "amount_due", fmtf(expected), fmtf(r.AmountDue), "Math: Amount Due")}
			},
		},
		&rule{
			key: "math.subtotal", name: "Math: Subtotal vs Line Items",
			check: func(r *schema.InvoiceRecord) []Result {
				if r.Subtotal == 0 || len(r.LineItems) == 0 {
					return nil
				}
				var sum float64
				for i := range r.LineItems {
					sum += r.LineItems[i].TotalAmount
				}
				if sum == 0 {
					return nil
				}
				passed := approxEqual(r.Subtotal, sum)
				return []Result{mathResult(passed, "subtotal", fmtf(sum), fmtf(r.Subtotal), "Math: Subtotal vs Line Items")}
			},
		},
	}
}

// LogicalRules returns cross-field ordering and consistency rules.
func LogicalRules() []Rule {
	return []Rule{
		&rule{
			key: "logical.date_order", name: "Logical: Invoice Date Before Due Date",
			check: func(r *schema.InvoiceRecord) []Result {
				if r.InvoiceDate == "" || r.DueDate == "" {
					return nil
				}
				inv, err1 := time.Parse("2006-01-02", r.InvoiceDate)
				due, err2 := time.Parse("2006-01-02", r.DueDate)
				if err1 != nil || err2 != nil {
					return nil
				}
				passed := !due.Before(inv)
				msg := "Logical: Invoice Date Before Due Date: dates are ordered"
				if !passed {
					msg = fmt.Sprintf("Logical: Invoice Date Before Due Date: due_date %s precedes invoice_date %s", r.DueDate, r.InvoiceDate)
				}
				return []Result{{
					Passed: passed, FieldPath: "due_date",
					ExpectedValue: "on or after " + r.InvoiceDate, ActualValue: r.DueDate,
					Message: msg,
				}}
			},
		},
		&rule{
			key: "logical.weight_order", name: "Logical: Net Weight Within Gross Weight",
			check: func(r *schema.InvoiceRecord) []Result {
				if r.TotalNetWeight == 0 || r.TotalGrossWeight == 0 {
					return nil
				}
				passed := r.TotalNetWeight <= r.TotalGrossWeight
				msg := "Logical: Net Weight Within Gross Weight: weights are consistent"
				if !passed {
					msg = fmt.Sprintf("Logical: Net Weight Within Gross Weight: total_net_weight %.3f exceeds total_gross_weight %.3f", r.TotalNetWeight, r.TotalGrossWeight)
				}
				return []Result{{
					Passed: passed, FieldPath: "total_net_weight",
					ExpectedValue: fmt.Sprintf("<= %.3f", r.TotalGrossWeight), ActualValue: fmt.Sprintf("%.3f", r.TotalNetWeight),
					Message: msg,
				}}
			},
		},
		&rule{
			key: "logical.currency_consistency", name: "Logical: Line Item Currency",
			check: func(r *schema.InvoiceRecord) []Result {
				if r.Currency == "" {
					return nil
				}
				var results []Result
				for i := range r.LineItems {
					item := &r.LineItems[i]
					if item.Currency == "" || item.Currency == r.Currency {
						continue
					}
					fp := fmt.Sprintf("line_items[%d].currency", i)
					results = append(results, Result{
						Passed: false, FieldPath: fp,
						ExpectedValue: r.Currency, ActualValue: item.Currency,
						Message: fmt.Sprintf("Logical: Line Item Currency: %s is %s but the record currency is %s", fp, item.Currency, r.Currency),
					})
				}
				return results
			},
		},
	}
}

// FormatRules returns field-shape rules.
func FormatRules() []Rule {
	return []Rule{
		&rule{
			key: "format.seller_vat", name: "Format: Seller VAT Number",
			check: func(r *schema.InvoiceRecord) []Result {
				return vatResult(r.SellerVATNumber, "seller_vat_number", "Format: Seller VAT Number")
			},
		},
		&rule{
			key: "format.buyer_vat", name: "Format: Buyer VAT Number",
			check: func(r *schema.InvoiceRecord) []Result {
				return vatResult(r.BuyerVATNumber, "buyer_vat_number", "Format: Buyer VAT Number")
			},
		},
	}
}

func vatResult(value, fieldPath, ruleName string) []Result {
	if value == "" {
		return nil
	}
	passed := vatPattern.MatchString(value)
	msg := fmt.Sprintf("%s: %s is well-formed", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s %q does not look like a VAT or tax registration number", ruleName, fieldPath, value)
	}
	return []Result{{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: "country-prefixed or numeric registration number", ActualValue: value,
		Message: msg,
	}}
}
