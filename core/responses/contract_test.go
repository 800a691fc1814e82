package responses

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema pins the wire shape of a single stream record. Decoding is
// tolerant at runtime; this keeps the expected shape itself from drifting
// silently.
const recordSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"candidates": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"groundingMetadata": {
						"type": "object",
						"properties": {
							"groundingChunks": {
								"type": "array",
								"items": {
									"type": "object",
									"properties": {
										"web": {
											"type": "object",
											"properties": {
												"uri": {"type": "string"},
												"title": {"type": "string"}
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

func compileRecordSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	schema, err := jsonschema.CompileString("record.json", recordSchema)
	if err != nil {
		t.Fatalf("failed to compile record schema: %v", err)
	}
	return schema
}

func TestRecordWireShape(t *testing.T) {
	schema := compileRecordSchema(t)

	valid := []string{
		`{"text": "Boa tarde."}`,
		`{"text": ""}`,
		`{"text": "Com fontes.", "candidates": [{"groundingMetadata": {"groundingChunks": [{"web": {"uri": "https://a.example", "title": "A"}}]}}]}`,
		`{"text": "Sem metadata.", "candidates": [{}]}`,
	}
	for _, payload := range valid {
		var v any
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			t.Fatalf("fixture is not JSON: %v", err)
		}
		if err := schema.Validate(v); err != nil {
			t.Errorf("expected %s to be valid: %v", payload, err)
		}

		var rec record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			t.Errorf("expected %s to decode into a record: %v", payload, err)
		}
	}

	invalid := []string{
		`{"text": 42}`,
		`{"candidates": {"groundingMetadata": {}}}`,
		`{"candidates": [{"groundingMetadata": {"groundingChunks": [{"web": {"uri": 7}}]}}]}`,
	}
	for _, payload := range invalid {
		var v any
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			t.Fatalf("fixture is not JSON: %v", err)
		}
		if err := schema.Validate(v); err == nil {
			t.Errorf("expected %s to be rejected", payload)
		}
	}
}
