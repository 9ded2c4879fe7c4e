package agent

import (
	"fmt"
	"strings"
)

const analyzeSystemPrompt = `You are an ESG analysis expert. Analyze the provided documents and extract key ESG signals including:
- Environmental: emissions, energy use, waste management, climate commitments
- Social: labor practices, diversity metrics, community impact, supply chain ethics
- Governance: board structure, executive compensation, transparency, compliance

Provide a comprehensive analysis with specific data points and quotes from the documents.`

const scoreSystemPrompt = `You are an ESG scoring expert. Based on the analysis provided, calculate Environmental (E), Social (S), and Governance (G) scores on a 0-100 scale.

Consider:
- E Score: emissions reduction, renewable energy, waste management, climate commitments
- S Score: employee welfare, diversity & inclusion, community engagement, supply chain ethics
- G Score: board independence, transparency, executive compensation, compliance

Provide scores with justification.`

const findingsSystemPrompt = `You are an ESG auditor specializing in detecting issues. Analyze the provided information and identify:
1. Greenwashing: claims without evidence or misleading statements
2. Supply chain ethics: labor violations, sourcing issues
3. Diversity concerns: lack of representation, pay gaps
4. Governance issues: conflicts of interest, lack of transparency

For each finding, provide:
- category: 'greenwashing', 'supply_chain', 'diversity', or 'governance'
- severity: 1-5 (5 being most severe)
- summary: brief description
- evidence: specific quotes or data points
- citation: reference to source document

Return 3-7 findings, prioritized by severity.`

const actionsSystemPrompt = `You are an ESG strategy consultant. Based on the ESG scores and findings, create 3-5 prioritized action recommendations.

For each action:
- title: concise action title
- rationale: why this action is important (2-3 sentences)
- priority: 1-5 (1 being highest priority)
- expectedImpact: estimated score improvement (0-20 points)
- costEstimate: estimated cost in USD
- confidence: confidence level 0-100
- citations: array of relevant sources

Focus on high-impact, feasible actions that address the most severe findings.`

func analyzeUserPrompt(companyName string, documents []string) string {
	return fmt.Sprintf("Analyze these documents for %s:\n\n%s",
		companyName, strings.Join(documents, "\n\n---\n\n"))
}

func scoreUserPrompt(analysis string) string {
	return "Calculate ESG scores based on this analysis:\n\n" + analysis
}

func findingsUserPrompt(analysis string) string {
	return "Detect ESG issues in this analysis:\n\n" + analysis
}

func actionsUserPrompt(companyName string, scores Scores, findings []RawFinding) string {
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("- %s (severity %s): %s",
			ensureString(f.Category, "general"),
			ensureString(f.Severity, "?"),
			ensureString(f.Summary, "")))
	}
	return fmt.Sprintf(`Generate action plan for %s:

Current Scores: E=%d, S=%d, G=%d

Key Findings:
%s

Provide 3-5 prioritized actions.`,
		companyName, scores.EScore, scores.SScore, scores.GScore, strings.Join(lines, "\n"))
}

var scoresSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"eScore":        map[string]any{"type": "integer", "description": "Environmental score 0-100"},
		"sScore":        map[string]any{"type": "integer", "description": "Social score 0-100"},
		"gScore":        map[string]any{"type": "integer", "description": "Governance score 0-100"},
		"justification": map[string]any{"type": "string", "description": "Brief justification for scores"},
	},
	"required":             []string{"eScore", "sScore", "gScore", "justification"},
	"additionalProperties": false,
}

var findingsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"findings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{"type": "string"},
					"severity": map[string]any{"type": "integer"},
					"summary":  map[string]any{"type": "string"},
					"evidence": map[string]any{"type": "string"},
					"citation": map[string]any{"type": "string"},
				},
				"required":             []string{"category", "severity", "summary", "evidence", "citation"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"findings"},
	"additionalProperties": false,
}

var actionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"actions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":          map[string]any{"type": "string"},
					"rationale":      map[string]any{"type": "string"},
					"priority":       map[string]any{"type": "integer"},
					"expectedImpact": map[string]any{"type": "integer"},
					"costEstimate":   map[string]any{"type": "integer"},
					"confidence":     map[string]any{"type": "integer"},
					"citations":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"title", "rationale", "priority", "expectedImpact", "costEstimate", "confidence", "citations"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"actions"},
	"additionalProperties": false,
}
