package splitter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"invosplit/internal/config"
	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// Client implements port.SplitMaterializer against the HTTP page-split
// service. Each requested span is materialized independently; a failed span
// comes back with an error string instead of bytes.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a split service client from config.
func NewClient(cfg *config.SplitterConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type splitRequest struct {
	Document string      `json:"document"`
	Spans    []splitSpan `json:"spans"`
}

type splitSpan struct {
	ID        uuid.UUID `json:"id"`
	StartPage int       `json:"start_page"`
	EndPage   int       `json:"end_page"`
}

type splitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Parts   []struct {
		SpanID   uuid.UUID `json:"span_id"`
		Document string    `json:"document,omitempty"`
		Error    string    `json:"error,omitempty"`
	} `json:"parts"`
}

func (c *Client) Split(ctx context.Context, source []byte, spans []domain.ValidatedSpan) ([]port.SplitResult, error) {
	reqSpans := make([]splitSpan, len(spans))
	for i, s := range spans {
		reqSpans[i] = splitSpan{ID: s.ID, StartPage: s.StartPage, EndPage: s.EndPage}
	}

	bodyBytes, err := json.Marshal(splitRequest{
		Document: base64.StdEncoding.EncodeToString(source),
		Spans:    reqSpans,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/split", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling split service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("split service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var sr splitResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if !sr.Success {
		return nil, fmt.Errorf("split service rejected request: %s", sr.Error)
	}

	results := make([]port.SplitResult, 0, len(sr.Parts))
	for _, p := range sr.Parts {
		result := port.SplitResult{SpanID: p.SpanID, Err: p.Error}
		if p.Error == "" {
			decoded, err := base64.StdEncoding.DecodeString(p.Document)
			if err != nil {
				result.Err = fmt.Sprintf("decoding part document: %v", err)
			} else {
				result.Bytes = decoded
			}
		}
		results = append(results, result)
	}
	return results, nil
}
