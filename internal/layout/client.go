package layout

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"invosplit/internal/config"
	"invosplit/internal/port"
)

// Client implements port.LayoutAnalyzer against the HTTP layout analysis
// service. The service does full-page OCR, table detection, key-value pair
// detection, and directed field queries.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient creates a layout analysis client from config.
func NewClient(cfg *config.LayoutConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Document string   `json:"document"`
	Queries  []string `json:"queries,omitempty"`
}

// envelope is the service's uniform response wrapper. Failures come back as
// HTTP 200 with success=false and a message.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

func (c *Client) AnalyzeDocument(ctx context.Context, fileBytes []byte) (*port.LayoutResult, error) {
	raw, err := c.post(ctx, "/v1/analyze", analyzeRequest{
		Document: base64.StdEncoding.EncodeToString(fileBytes),
	})
	if err != nil {
		return nil, err
	}

	var result port.LayoutResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling analyze result: %w", err)
	}
	return &result, nil
}

func (c *Client) QueryFields(ctx context.Context, fileBytes []byte, queries []string) ([]port.QueryAnswer, error) {
	raw, err := c.post(ctx, "/v1/query", analyzeRequest{
		Document: base64.StdEncoding.EncodeToString(fileBytes),
		Queries:  queries,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Answers []port.QueryAnswer `json:"answers"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling query result: %w", err)
	}
	return result.Answers, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling layout service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("layout service rejected request: %s", env.Error)
	}
	return env.Result, nil
}
