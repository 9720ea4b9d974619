package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invosplit/internal/schema"
)

const (
	recordsSheet   = "Records"
	lineItemsSheet = "Line Items"
)

var lineItemColumns = []string{
	"Invoice Number",
	"Description",
	"Product Code",
	"HS Code",
	"Origin Country",
	"Quantity",
	"Unit Price",
	"Total Amount",
	"Net Weight",
	"Gross Weight",
	"Currency",
	"Type",
}

// WriteXLSX writes extracted records as a two-sheet workbook: one row per
// record plus a flat sheet of every line item across all records.
func WriteXLSX(w io.Writer, records []schema.InvoiceRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return fmt.Errorf("creating line items sheet: %w", err)
	}

	if err := writeRow(f, recordsSheet, 1, toAny(columns)); err != nil {
		return err
	}
	for i := range records {
		if err := writeRow(f, recordsSheet, i+2, toAny(recordToRow(&records[i]))); err != nil {
			return err
		}
	}

	if err := writeRow(f, lineItemsSheet, 1, toAny(lineItemColumns)); err != nil {
		return err
	}
	rowNum := 2
	for i := range records {
		for _, item := range records[i].LineItems {
			cells := []any{
				records[i].InvoiceNumber,
				item.Description,
				item.ProductCode,
				item.HSCode,
				item.OriginCountry,
				item.Quantity,
				item.UnitPrice,
				item.TotalAmount,
				item.NetWeight,
				item.GrossWeight,
				item.Currency,
				string(item.Type),
			}
			if err := writeRow(f, lineItemsSheet, rowNum, cells); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
