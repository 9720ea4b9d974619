package export

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"

	"invosplit/internal/schema"
)

// BOM is the UTF-8 byte order mark, prepended for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for extracted invoice records.
var columns = []string{
	"Label",
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Seller Name",
	"Seller Country",
	"Seller VAT Number",
	"Buyer Name",
	"Buyer Country",
	"Buyer VAT Number",
	"Currency",
	"Incoterms",
	"Payment Terms",
	"Subtotal",
	"Tax Amount",
	"Shipping Amount",
	"Amount Due",
	"Amount Due Computed",
	"Total Net Weight",
	"Total Gross Weight",
	"Line Item Count",
	"Confidence",
	"Warnings",
	"Error",
}

// Writer wraps csv.Writer for exporting invoice records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts extracted records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []schema.InvoiceRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func recordToRow(rec *schema.InvoiceRecord) []string {
	row := make([]string, len(columns))
	row[0] = rec.Label
	row[1] = rec.InvoiceNumber
	row[2] = rec.InvoiceDate
	row[3] = rec.DueDate
	row[4] = rec.SellerName
	row[5] = rec.SellerCountry
	row[6] = rec.SellerVATNumber
	row[7] = rec.BuyerName
	row[8] = rec.BuyerCountry
	row[9] = rec.BuyerVATNumber
	row[10] = rec.Currency
	row[11] = rec.Incoterms
	row[12] = rec.PaymentTerms
	row[13] = formatMoney(rec.Subtotal)
	row[14] = formatMoney(rec.TaxAmount)
	row[15] = formatMoney(rec.ShippingAmount)
	row[16] = formatMoney(rec.AmountDue)
	row[17] = formatBool(rec.AmountDueComputed)
	row[18] = formatWeight(rec.TotalNetWeight)
	row[19] = formatWeight(rec.TotalGrossWeight)
	row[20] = strconv.Itoa(len(rec.LineItems))
	row[21] = strconv.FormatFloat(rec.Confidence, 'f', 2, 64)
	row[22] = joinWarnings(rec.Warnings)
	row[23] = rec.Error
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatWeight(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func joinWarnings(warnings []string) string {
	out := ""
	for i, w := range warnings {
		if i > 0 {
			out += "; "
		}
		out += w
	}
	return out
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a batch name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "_" {
		return "export"
	}
	return s
}
