package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldPayloadSchema constrains a single field entry returned by the
// inference fallback tier. Entries failing this shape are rejected before
// merge and the field treated as absent.
var fieldPayloadSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"properties": map[string]any{
		"value": map[string]any{
			"type": []any{"string", "number", "boolean", "null"},
		},
		"confidence": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"evidence": map[string]any{
			"type": "string",
		},
	},
	"required": []any{"value"},
}

var compiledFieldSchema = mustCompile(fieldPayloadSchema)

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("schema: marshal field payload schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("field_payload.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("schema: add field payload schema: %v", err))
	}
	s, err := compiler.Compile("field_payload.json")
	if err != nil {
		panic(fmt.Sprintf("schema: compile field payload schema: %v", err))
	}
	return s
}

// ValidateFieldPayload checks one inference-supplied field entry against
// the payload schema.
func ValidateFieldPayload(entry any) error {
	if err := compiledFieldSchema.Validate(entry); err != nil {
		return fmt.Errorf("field payload does not match schema: %w", err)
	}
	return nil
}
