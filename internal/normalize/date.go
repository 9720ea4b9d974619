package normalize

import (
	"strings"
	"time"
)

// strictLayouts are tried in order; the first exact match wins. Day-first
// layouts precede month-first so "30/05/2025" resolves as 30 May rather
// than failing on an impossible month.
var strictLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// permissiveLayouts are the fallback formats tried when no strict layout
// matches, covering spelled-out and timestamped dates seen in OCR output.
var permissiveLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2.1.2006",
	"2/1/2006",
}

// ToISODate normalizes a locale-ambiguous date string to ISO 8601
// (YYYY-MM-DD). The second return value is false when nothing parses.
func ToISODate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range permissiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
