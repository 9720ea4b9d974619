package splitter_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invosplit/internal/config"
	"invosplit/internal/domain"
	"invosplit/internal/splitter"
)

func TestSplitterClient_Split(t *testing.T) {
	spanA := uuid.New()
	spanB := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/split", r.URL.Path)

		var reqBody struct {
			Document string `json:"document"`
			Spans    []struct {
				ID        uuid.UUID `json:"id"`
				StartPage int       `json:"start_page"`
				EndPage   int       `json:"end_page"`
			} `json:"spans"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		require.Len(t, reqBody.Spans, 2)
		assert.Equal(t, 1, reqBody.Spans[0].StartPage)
		assert.Equal(t, 2, reqBody.Spans[0].EndPage)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"parts": []map[string]interface{}{
				{"span_id": spanA, "document": base64.StdEncoding.EncodeToString([]byte("%PDF part A"))},
				{"span_id": spanB, "error": "page range rendering failed"},
			},
		})
	}))
	defer server.Close()

	client := splitter.NewClient(&config.SplitterConfig{Endpoint: server.URL, TimeoutSecs: 30})
	results, err := client.Split(context.Background(), []byte("%PDF bundle"), []domain.ValidatedSpan{
		{ID: spanA, StartPage: 1, EndPage: 2},
		{ID: spanB, StartPage: 3, EndPage: 5},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, spanA, results[0].SpanID)
	assert.Equal(t, []byte("%PDF part A"), results[0].Bytes)
	assert.Empty(t, results[0].Err)

	assert.Equal(t, spanB, results[1].SpanID)
	assert.Nil(t, results[1].Bytes)
	assert.Equal(t, "page range rendering failed", results[1].Err)
}

func TestSplitterClient_Split_ServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "document is not a PDF",
		})
	}))
	defer server.Close()

	client := splitter.NewClient(&config.SplitterConfig{Endpoint: server.URL, TimeoutSecs: 30})
	_, err := client.Split(context.Background(), []byte("not a pdf"), []domain.ValidatedSpan{{ID: uuid.New(), StartPage: 1, EndPage: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is not a PDF")
}
