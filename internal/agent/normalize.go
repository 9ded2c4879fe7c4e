package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/esg-advisor/internal/model"
)

// asNumber coerces a decoded JSON value to a float64. Strings are parsed
// when they hold a numeric literal; everything else is rejected.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		return f, err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	return 0, false
}

// clampScore rounds a model-supplied score and clamps it to [0, 100].
// Non-numeric input collapses to 0.
func clampScore(v any) int {
	n, ok := asNumber(v)
	if !ok {
		return 0
	}
	r := int(math.Round(n))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// coerceNumber returns v as a float64 or the fallback.
func coerceNumber(v any, fallback float64) float64 {
	if n, ok := asNumber(v); ok {
		return n
	}
	return fallback
}

// ensureString returns v as a string, stringifying non-nil scalars.
func ensureString(v any, fallback string) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return fallback
	default:
		return fmt.Sprintf("%v", s)
	}
}

// stringifyEvidence renders evidence of any shape to text. Structured
// values are serialized as JSON.
func stringifyEvidence(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// severityByName passes recognized severity strings through unchanged.
var severityByName = map[string]model.Severity{
	"critical": model.SeverityCritical,
	"high":     model.SeverityHigh,
	"medium":   model.SeverityMedium,
	"low":      model.SeverityLow,
	"info":     model.SeverityInfo,
}

// MapSeverity converts a model-supplied severity (numeric 1-5 scale or a
// named level) into the closed enum. The numeric thresholds are ≤0→info,
// ≤1→low, ≤2→medium, ≤3→high, else critical; the off-by-one at the low
// end is intentional and must not shift. Unrecognized input lands on
// medium.
func MapSeverity(v any) model.Severity {
	if n, ok := asNumber(v); ok {
		switch {
		case n <= 0:
			return model.SeverityInfo
		case n <= 1:
			return model.SeverityLow
		case n <= 2:
			return model.SeverityMedium
		case n <= 3:
			return model.SeverityHigh
		default:
			return model.SeverityCritical
		}
	}
	if s, ok := v.(string); ok {
		if sev, ok := severityByName[strings.ToLower(s)]; ok {
			return sev
		}
	}
	return model.SeverityMedium
}

// findingCategoryLexicon collapses the model's wider category vocabulary
// into the stored enum. Unknown vocabulary lands on general rather than
// guessing.
var findingCategoryLexicon = map[string]model.FindingCategory{
	"environmental": model.FindingEnvironmental,
	"social":        model.FindingSocial,
	"governance":    model.FindingGovernance,
	"general":       model.FindingGeneral,
	"greenwashing":  model.FindingEnvironmental,
	"supply_chain":  model.FindingSocial,
	"diversity":     model.FindingSocial,
}

// MapFindingCategory resolves a model-supplied category via the lexicon.
func MapFindingCategory(v any) model.FindingCategory {
	if s, ok := v.(string); ok {
		if cat, ok := findingCategoryLexicon[strings.ToLower(s)]; ok {
			return cat
		}
	}
	return model.FindingGeneral
}

// priorityByName passes recognized priority strings through unchanged.
var priorityByName = map[string]model.Priority{
	"critical": model.PriorityCritical,
	"high":     model.PriorityHigh,
	"medium":   model.PriorityMedium,
	"low":      model.PriorityLow,
}

// MapPriority converts a model-supplied priority (1 = most urgent) into
// the closed enum: ≤1→critical, ≤2→high, ≤3→medium, else low.
func MapPriority(v any) model.Priority {
	if n, ok := asNumber(v); ok {
		switch {
		case n <= 1:
			return model.PriorityCritical
		case n <= 2:
			return model.PriorityHigh
		case n <= 3:
			return model.PriorityMedium
		default:
			return model.PriorityLow
		}
	}
	if s, ok := v.(string); ok {
		if p, ok := priorityByName[strings.ToLower(s)]; ok {
			return p
		}
	}
	return model.PriorityMedium
}
