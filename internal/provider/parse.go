package provider

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// cleanJSON strips markdown code fences and surrounding prose from a model
// response, leaving the embedded JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// decodeJSON parses a model response into v using a layered strategy: strict
// unmarshal first, then fence/prose stripping. Failure is a typed
// invalid_response error so callers never retry a deterministic parse failure.
func decodeJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	cleaned := cleanJSON(text)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return newError(KindInvalidResponse, eris.Wrap(err, "parse model response"))
	}
	return nil
}
