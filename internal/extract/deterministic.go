package extract

import (
	"context"
	"fmt"
	"strings"

	"invosplit/internal/domain"
	"invosplit/internal/normalize"
	"invosplit/internal/port"
	"invosplit/internal/schema"
)

// DeterministicSource resolves fields addressed by fixed label paths into
// the layout service's key-value output. It is the most trusted tier and
// needs no external calls beyond the layout analysis already performed.
type DeterministicSource struct{}

// NewDeterministicSource creates the deterministic tier.
func NewDeterministicSource() *DeterministicSource {
	return &DeterministicSource{}
}

func (s *DeterministicSource) Tier() domain.Tier {
	return domain.TierDeterministic
}

func (s *DeterministicSource) AttemptFields(_ context.Context, req *Request, missing []string) (map[string]schema.ExtractedField, error) {
	if req.Layout == nil {
		return nil, nil
	}

	out := make(map[string]schema.ExtractedField)
	for _, name := range missing {
		spec, ok := schema.FieldByName(name)
		if !ok || len(spec.KVLabels) == 0 {
			continue
		}
		kv, found := matchKeyValue(req.Layout.KeyValuePairs, spec.KVLabels)
		if !found || strings.TrimSpace(kv.Value) == "" {
			continue
		}
		out[name] = schema.ExtractedField{
			Name:       name,
			Value:      strings.TrimSpace(kv.Value),
			Tier:       domain.TierDeterministic,
			Confidence: kv.Confidence,
			Evidence:   fmt.Sprintf("key-value pair %q on page %d", kv.Key, kv.PageNumber),
		}
	}
	return out, nil
}

// matchKeyValue finds the first key-value pair whose normalized key equals
// or contains one of the candidate labels, in label priority order.
func matchKeyValue(pairs []port.KeyValuePair, labels []string) (port.KeyValuePair, bool) {
	for _, label := range labels {
		for _, kv := range pairs {
			key := normalizeLabel(kv.Key)
			if key == label || strings.Contains(key, label) {
				return kv, true
			}
		}
	}
	return port.KeyValuePair{}, false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ":")
	return strings.Join(strings.Fields(s), " ")
}

// lineItemColumns maps table header keywords onto line item fields.
var lineItemColumns = map[string]string{
	"description":  "description",
	"item":         "description",
	"article":      "description",
	"product code": "product_code",
	"part number":  "product_code",
	"part no":      "product_code",
	"sku":          "product_code",
	"hs code":      "hs_code",
	"hts":          "hs_code",
	"tariff":       "hs_code",
	"origin":       "origin_country",
	"country of origin": "origin_country",
	"qty":          "quantity",
	"quantity":     "quantity",
	"unit price":   "unit_price",
	"price":        "unit_price",
	"rate":         "unit_price",
	"amount":       "total_amount",
	"total":        "total_amount",
	"line total":   "total_amount",
	"net weight":   "net_weight",
	"gross weight": "gross_weight",
}

// ExtractLineItems builds ordered line items from the layout service's
// table output. The first table with a recognizable item header is used;
// row order is preserved. Numeric cells go through the locale-ambiguous
// parser here because table cell content is always raw text.
func ExtractLineItems(layout *port.LayoutResult) []schema.LineItem {
	if layout == nil {
		return nil
	}
	for _, table := range layout.Tables {
		columns := classifyColumns(table)
		if columns == nil {
			continue
		}
		return itemsFromTable(table, columns)
	}
	return nil
}

// classifyColumns maps column index to a line item field using the header
// row. A table qualifies as an item table only when it has at least a
// description and one monetary column.
func classifyColumns(table port.Table) map[int]string {
	columns := make(map[int]string)
	for _, cell := range table.Cells {
		if cell.RowIndex != 0 && !cell.IsHeader {
			continue
		}
		header := normalizeLabel(cell.Content)
		if field, ok := lineItemColumns[header]; ok {
			columns[cell.ColumnIndex] = field
			continue
		}
		for keyword, field := range lineItemColumns {
			if strings.Contains(header, keyword) {
				columns[cell.ColumnIndex] = field
				break
			}
		}
	}

	hasDescription := false
	hasAmount := false
	for _, f := range columns {
		switch f {
		case "description":
			hasDescription = true
		case "unit_price", "total_amount":
			hasAmount = true
		}
	}
	if !hasDescription || !hasAmount {
		return nil
	}
	return columns
}

func itemsFromTable(table port.Table, columns map[int]string) []schema.LineItem {
	rows := make(map[int]map[string]string)
	maxRow := 0
	for _, cell := range table.Cells {
		if cell.RowIndex == 0 || cell.IsHeader {
			continue
		}
		field, ok := columns[cell.ColumnIndex]
		if !ok {
			continue
		}
		if rows[cell.RowIndex] == nil {
			rows[cell.RowIndex] = make(map[string]string)
		}
		rows[cell.RowIndex][field] = strings.TrimSpace(cell.Content)
		if cell.RowIndex > maxRow {
			maxRow = cell.RowIndex
		}
	}

	var items []schema.LineItem
	for row := 1; row <= maxRow; row++ {
		values := rows[row]
		if len(values) == 0 {
			continue
		}
		item := schema.LineItem{
			Description:   values["description"],
			ProductCode:   values["product_code"],
			HSCode:        values["hs_code"],
			OriginCountry: values["origin_country"],
			Quantity:      normalize.ParseAmbiguousNumber(values["quantity"]),
			UnitPrice:     normalize.ParseAmbiguousNumber(values["unit_price"]),
			TotalAmount:   normalize.ParseAmbiguousNumber(values["total_amount"]),
			NetWeight:     normalize.ParseAmbiguousNumber(values["net_weight"]),
			GrossWeight:   normalize.ParseAmbiguousNumber(values["gross_weight"]),
		}
		if item.Description == "" && item.TotalAmount == 0 {
			continue
		}
		item.Type = classifyLineItem(item.Description)
		items = append(items, item)
	}
	return items
}

func classifyLineItem(description string) domain.LineItemType {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "shipping"), strings.Contains(d, "freight"),
		strings.Contains(d, "delivery"), strings.Contains(d, "postage"):
		return domain.LineItemShipping
	case strings.Contains(d, "vat"), strings.Contains(d, "tax"),
		strings.Contains(d, "gst"), strings.Contains(d, "duty"):
		return domain.LineItemTax
	case strings.Contains(d, "discount"), strings.Contains(d, "rebate"):
		return domain.LineItemDiscount
	case strings.Contains(d, "fee"), strings.Contains(d, "surcharge"),
		strings.Contains(d, "handling"):
		return domain.LineItemFee
	case d == "":
		return domain.LineItemOther
	default:
		return domain.LineItemProduct
	}
}
