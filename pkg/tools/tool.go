package tools

import (
	"context"
	"encoding/json"
)

// Tool is a single callable capability exposed to the agent loop. Parameters
// returns a JSON schema object suitable for OpenAI function calling; Execute
// returns the tool's textual output for the model (and the verification
// layer) to consume.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// objectSchema builds a JSON schema for an object with the given properties.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// stringProp builds a string property schema.
func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// numberProp builds a number property schema.
func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

// renderJSON pretty-prints a raw API payload for the model, capped so one
// verbose endpoint cannot blow the context window.
const maxRenderBytes = 8192

func renderJSON(raw json.RawMessage) string {
	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err != nil {
		// Not an object (could be an array); fall back to the raw text.
		return truncate(string(raw), maxRenderBytes)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return truncate(string(raw), maxRenderBytes)
	}
	return truncate(string(pretty), maxRenderBytes)
}

// truncate limits a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// stringArg extracts a string argument, returning fallback when absent.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// floatArg extracts a numeric argument, returning fallback when absent.
func floatArg(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}
