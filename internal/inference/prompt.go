package inference

import (
	"fmt"
	"strings"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// BuildBoundaryPrompt returns the document-boundary proposal prompt for a
// page corpus. Page text is expected to be pre-truncated by the caller.
func BuildBoundaryPrompt(pages []domain.PageRecord) string {
	var sb strings.Builder
	sb.WriteString(`You are a document analysis assistant. The text below is the page-by-page content of a scanned bundle that may contain several distinct commercial invoices concatenated into one file.

Identify where each individual invoice starts and ends. Look for new invoice numbers, repeated letterheads, changing sellers, and page footers such as "page 1 of 2".

Return ONLY a valid JSON array with no markdown formatting, no code fences, no explanation. Each element must have this shape:

[
  {
    "label": "",
    "start_page": 1,
    "end_page": 1,
    "confidence": 0.0,
    "rationale": ""
  }
]

Rules:
- Page numbers are 1-based and refer to the page markers below.
- "confidence" is your certainty in [0,1] that the boundary pair is correct.
- "rationale" is a one-sentence reason for the boundary.
- Cover the bundle in reading order; do not invent pages that are not listed.

`)
	sb.WriteString(fmt.Sprintf("The bundle has %d pages:\n\n", len(pages)))
	for _, p := range pages {
		sb.WriteString(fmt.Sprintf("--- PAGE %d ---\n%s\n\n", p.PageNumber, p.Text))
	}
	return sb.String()
}

// BuildFieldPrompt returns the field-completion prompt for one sub-document.
// The request carries the partially filled record, the canonical field names
// still missing, and the page text to reason over.
func BuildFieldPrompt(req port.FieldRequest) string {
	var sb strings.Builder
	sb.WriteString(`You are an invoice data extraction assistant. A structured extraction pass has already filled part of the invoice record below; your job is to supply ONLY the listed missing fields from the document text.

Return ONLY a valid JSON object with no markdown formatting, no code fences, no explanation, shaped as:

{
  "fields": {
    "<field_name>": {
      "value": "",
      "confidence": 0.0,
      "evidence": ""
    }
  }
}

Rules:
- Answer only the missing fields listed below; never restate fields already present in the record.
- "value" must be a string, number, boolean, or null. Use null when the document does not contain the field.
- "confidence" is your certainty in [0,1].
- "evidence" quotes or paraphrases the document text the value came from.
- Dates should be returned as they appear in the document; amounts as plain numbers without currency symbols.

`)
	sb.WriteString("Record so far:\n")
	sb.Write(req.Record)
	sb.WriteString("\n\nMissing fields:\n")
	for _, name := range req.MissingFields {
		sb.WriteString("- " + name + "\n")
	}
	sb.WriteString("\nDocument text:\n")
	sb.WriteString(req.PageText)
	sb.WriteString("\n")
	return sb.String()
}
