package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/esg-advisor/internal/model"
)

func TestMapSeverity_NumericBoundaries(t *testing.T) {
	cases := []struct {
		in   any
		want model.Severity
	}{
		{float64(-1), model.SeverityInfo},
		{float64(0), model.SeverityInfo},
		{float64(0.5), model.SeverityLow},
		{float64(1), model.SeverityLow},
		{float64(2), model.SeverityMedium},
		{float64(3), model.SeverityHigh},
		{float64(4), model.SeverityCritical},
		{float64(5), model.SeverityCritical},
		{float64(100), model.SeverityCritical},
		{"3", model.SeverityHigh}, // numeric strings coerce
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapSeverity(tc.in), "severity(%v)", tc.in)
	}
}

func TestMapSeverity_Strings(t *testing.T) {
	assert.Equal(t, model.SeverityCritical, MapSeverity("critical"))
	assert.Equal(t, model.SeverityInfo, MapSeverity("INFO"))
	assert.Equal(t, model.SeverityMedium, MapSeverity("urgent"))
	assert.Equal(t, model.SeverityMedium, MapSeverity(nil))
	assert.Equal(t, model.SeverityMedium, MapSeverity(""))
	assert.Equal(t, model.SeverityMedium, MapSeverity(map[string]any{}))
}

func TestMapFindingCategory(t *testing.T) {
	cases := []struct {
		in   any
		want model.FindingCategory
	}{
		{"environmental", model.FindingEnvironmental},
		{"Governance", model.FindingGovernance},
		{"greenwashing", model.FindingEnvironmental},
		{"supply_chain", model.FindingSocial},
		{"diversity", model.FindingSocial},
		{"general", model.FindingGeneral},
		{"climate", model.FindingGeneral},
		{nil, model.FindingGeneral},
		{float64(2), model.FindingGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapFindingCategory(tc.in), "category(%v)", tc.in)
	}
}

func TestMapPriority_NumericBoundaries(t *testing.T) {
	cases := []struct {
		in   any
		want model.Priority
	}{
		{float64(0), model.PriorityCritical},
		{float64(1), model.PriorityCritical},
		{float64(2), model.PriorityHigh},
		{float64(3), model.PriorityMedium},
		{float64(4), model.PriorityLow},
		{float64(9), model.PriorityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapPriority(tc.in), "priority(%v)", tc.in)
	}
	assert.Equal(t, model.PriorityHigh, MapPriority("high"))
	assert.Equal(t, model.PriorityMedium, MapPriority("whenever"))
	assert.Equal(t, model.PriorityMedium, MapPriority(nil))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(float64(-5)))
	assert.Equal(t, 0, clampScore("not a number"))
	assert.Equal(t, 0, clampScore(nil))
	assert.Equal(t, 72, clampScore(float64(72.4)))
	assert.Equal(t, 73, clampScore(float64(72.5)))
	assert.Equal(t, 100, clampScore(float64(250)))
	assert.Equal(t, 88, clampScore("88"))
}

func TestCoerceNumber(t *testing.T) {
	assert.Equal(t, 12.5, coerceNumber(float64(12.5), 0))
	assert.Equal(t, 7.0, coerceNumber("7", 0))
	assert.Equal(t, 3.0, coerceNumber("abc", 3))
	assert.Equal(t, 3.0, coerceNumber(nil, 3))
}

func TestEnsureString(t *testing.T) {
	assert.Equal(t, "hello", ensureString("hello", "x"))
	assert.Equal(t, "x", ensureString(nil, "x"))
	assert.Equal(t, "42", ensureString(float64(42), "x"))
	assert.Equal(t, "true", ensureString(true, "x"))
}

func TestStringifyEvidence(t *testing.T) {
	assert.Equal(t, "quoted text", stringifyEvidence("quoted text"))
	assert.Equal(t, "", stringifyEvidence(nil))
	assert.Equal(t, `["a","b"]`, stringifyEvidence([]any{"a", "b"}))
	assert.Equal(t, `{"page":12}`, stringifyEvidence(map[string]any{"page": float64(12)}))
}
