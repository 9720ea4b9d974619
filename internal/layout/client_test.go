package layout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invosplit/internal/config"
	"invosplit/internal/layout"
)

func newTestClient(serverURL string) *layout.Client {
	return layout.NewClient(&config.LayoutConfig{
		Endpoint:    serverURL,
		APIKey:      "test-api-key",
		TimeoutSecs: 30,
	})
}

func TestLayoutClient_AnalyzeDocument_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.NotEmpty(t, reqBody["document"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": map[string]interface{}{
				"document_ref": "doc-1",
				"pages": []map[string]interface{}{
					{"page_number": 1, "text": "Invoice INV-001", "word_count": 2},
				},
				"key_value_pairs": []map[string]interface{}{
					{"key": "Invoice No", "value": "INV-001", "page_number": 1, "confidence": 0.97},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.AnalyzeDocument(context.Background(), []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Invoice INV-001", result.Pages[0].Text)
	require.Len(t, result.KeyValuePairs, 1)
	assert.Equal(t, "INV-001", result.KeyValuePairs[0].Value)
}

func TestLayoutClient_AnalyzeDocument_ServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "document is encrypted",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.AnalyzeDocument(context.Background(), []byte("%PDF-1.4 test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is encrypted")
}

func TestLayoutClient_AnalyzeDocument_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.AnalyzeDocument(context.Background(), []byte("%PDF-1.4 test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestLayoutClient_QueryFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/query", r.URL.Path)

		var reqBody struct {
			Queries []string `json:"queries"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, []string{"What is the invoice number?"}, reqBody.Queries)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": map[string]interface{}{
				"answers": []map[string]interface{}{
					{"query": "What is the invoice number?", "answer": "INV-001", "confidence": 0.92, "page_number": 1},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	answers, err := client.QueryFields(context.Background(), []byte("%PDF-1.4 test"), []string{"What is the invoice number?"})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "INV-001", answers[0].Answer)
}
