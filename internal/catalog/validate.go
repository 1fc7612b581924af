package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// exportSchema describes the shape of a metadata export file. Identifier and
// bitstream are optional per item (their absence is a per-item skip, not a
// file-level failure), but the structural shape is enforced up front.
func exportSchema() map[string]any {
	entry := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"element":   map[string]any{"type": "string", "minLength": 1},
			"qualifier": map[string]any{"type": "string"},
			"value":     map[string]any{"type": "string"},
		},
		"required": []string{"element", "value"},
	}
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"identifier": map[string]any{"type": "string"},
			"bitstream":  map[string]any{"type": "string"},
			"metadata":   map[string]any{"type": "array", "items": entry},
		},
		"required": []string{"metadata"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items": map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}
}

// validateAgainstSchema validates "data" against "schemaMap".
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
