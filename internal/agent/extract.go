package agent

import (
	"encoding/json"
	"strings"
)

// jsonFieldCandidates are the alternate field names under which model
// providers have been observed to nest structured output.
var jsonFieldCandidates = []string{"json", "output_json", "data", "content"}

// Extraction strategy names, reported so tests can pin down exactly which
// shape a response took.
const (
	StrategyString     = "string"
	StrategyPartString = "part-string"
	StrategyPartText   = "part-text"
	StrategyField      = "field"
	StrategyFallback   = "fallback"
)

// ExtractText flattens model content of any observed shape (plain string,
// list of parts, part objects with text/output_text/nested fields) into a
// single string.
func ExtractText(content any) string {
	if content == nil {
		return ""
	}
	if s, ok := content.(string); ok {
		return strings.TrimSpace(s)
	}

	parts, ok := content.([]any)
	if !ok {
		parts = []any{content}
	}

	var chunks []string
	for _, part := range parts {
		switch p := part.(type) {
		case nil:
			continue
		case string:
			chunks = append(chunks, p)
		case map[string]any:
			if text, ok := p["text"].(string); ok {
				chunks = append(chunks, text)
				continue
			}
			if text, ok := p["output_text"].(string); ok {
				chunks = append(chunks, text)
				continue
			}
			for _, key := range jsonFieldCandidates {
				candidate, present := p[key]
				if !present || candidate == nil {
					continue
				}
				if s, ok := candidate.(string); ok {
					chunks = append(chunks, s)
					break
				}
				if b, err := json.Marshal(candidate); err == nil {
					chunks = append(chunks, string(b))
				}
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(chunks, "\n"))
}

// ExtractJSON decodes structured model output into T, trying a fixed
// ordered list of shapes: the whole content as a JSON string, then each
// part as a string, each part's text field, and finally the alternate
// nested field names. It returns the decoded value and the name of the
// strategy that matched; when nothing matches it returns the fallback
// with StrategyFallback. Malformed output never raises.
func ExtractJSON[T any](content any, fallback T) (T, string) {
	if content == nil {
		return fallback, StrategyFallback
	}

	if s, ok := content.(string); ok {
		if v, ok := tryParse[T](s); ok {
			return v, StrategyString
		}
		return fallback, StrategyFallback
	}

	parts, ok := content.([]any)
	if !ok {
		parts = []any{content}
	}

	for _, part := range parts {
		switch p := part.(type) {
		case nil:
			continue
		case string:
			if v, ok := tryParse[T](p); ok {
				return v, StrategyPartString
			}
		case map[string]any:
			if text, ok := p["text"].(string); ok {
				if v, ok := tryParse[T](text); ok {
					return v, StrategyPartText
				}
			}
			for _, key := range jsonFieldCandidates {
				candidate, present := p[key]
				if !present || candidate == nil {
					continue
				}
				if obj, ok := candidate.(map[string]any); ok {
					if v, ok := reshape[T](obj); ok {
						return v, StrategyField + ":" + key
					}
				}
				if s, ok := candidate.(string); ok {
					if v, ok := tryParse[T](s); ok {
						return v, StrategyField + ":" + key
					}
				}
			}
		}
	}

	return fallback, StrategyFallback
}

func tryParse[T any](s string) (T, bool) {
	var v T
	if strings.TrimSpace(s) == "" {
		return v, false
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, false
	}
	return v, true
}

// reshape converts an already-decoded object into T by round-tripping
// through JSON.
func reshape[T any](obj map[string]any) (T, bool) {
	var v T
	b, err := json.Marshal(obj)
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false
	}
	return v, true
}
