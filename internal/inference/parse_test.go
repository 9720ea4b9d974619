package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldReply_PlainJSON(t *testing.T) {
	resp, err := ParseFieldReply(`{"fields":{"invoice_number":{"value":"INV-1","confidence":0.9,"evidence":"header"}}}`)
	require.NoError(t, err)
	require.Contains(t, resp.Fields, "invoice_number")
	assert.Equal(t, "INV-1", resp.Fields["invoice_number"].Value)
	assert.InDelta(t, 0.9, resp.Fields["invoice_number"].Confidence, 1e-9)
}

func TestParseFieldReply_MarkdownFence(t *testing.T) {
	reply := "```json\n{\"fields\":{\"currency\":{\"value\":\"EUR\",\"confidence\":0.8,\"evidence\":\"footer\"}}}\n```"
	resp, err := ParseFieldReply(reply)
	require.NoError(t, err)
	assert.Equal(t, "EUR", resp.Fields["currency"].Value)
}

func TestParseFieldReply_SurroundingProse(t *testing.T) {
	reply := `Here is the extraction: {"fields":{"seller_vat":{"value":"DE123","confidence":0.7,"evidence":"p1"}}} Hope that helps.`
	resp, err := ParseFieldReply(reply)
	require.NoError(t, err)
	assert.Equal(t, "DE123", resp.Fields["seller_vat"].Value)
}

func TestParseFieldReply_NoJSON(t *testing.T) {
	_, err := ParseFieldReply("I could not find any fields in this document.")
	require.Error(t, err)
}

func TestParseFieldReply_EmptyFields(t *testing.T) {
	resp, err := ParseFieldReply(`{"fields":{}}`)
	require.NoError(t, err)
	assert.Empty(t, resp.Fields)
}
