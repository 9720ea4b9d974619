package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"invosplit/internal/port"
)

// ParseFieldReply parses a field-mode reply into a FieldResponse. Providers
// occasionally wrap JSON in markdown fences or prose despite instructions,
// so the reply is trimmed down to its outermost JSON object first.
func ParseFieldReply(text string) (*port.FieldResponse, error) {
	cleaned := extractJSONObject(text)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object in reply (raw: %s)", truncate(text, 200))
	}

	var resp port.FieldResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("parsing field reply JSON: %w (raw: %s)", err, truncate(text, 200))
	}
	if resp.Fields == nil {
		resp.Fields = map[string]port.FieldAnswer{}
	}
	return &resp, nil
}

func extractJSONObject(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
