package llm

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON pulls the first JSON object or array out of model output.
// Models occasionally wrap their JSON in markdown fences or prose; the
// stages treat the result as a strict contract, so extraction is tolerant
// but validation is not: output with no parseable JSON returns an error and
// the caller falls back to its default record.
func ExtractJSON(response string) (string, error) {
	cleaned := strings.TrimSpace(response)

	// Strip markdown code fences.
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON found in model output")
	}

	var end int
	if cleaned[start] == '{' {
		end = strings.LastIndex(cleaned, "}")
	} else {
		end = strings.LastIndex(cleaned, "]")
	}
	if end <= start {
		return "", fmt.Errorf("unterminated JSON in model output")
	}

	candidate := cleaned[start : end+1]
	if !gjson.Valid(candidate) {
		return "", fmt.Errorf("model output is not valid JSON")
	}
	return candidate, nil
}

// Field returns a field from extracted JSON by gjson path.
func Field(jsonStr, path string) gjson.Result {
	return gjson.Get(jsonStr, path)
}
