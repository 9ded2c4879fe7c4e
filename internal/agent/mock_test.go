package agent

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/esg-advisor/pkg/llm"
)

// mockLLM is a testify mock for the model client.
type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func textResponse(text string, in, out int64) *llm.Response {
	return &llm.Response{
		Model: "claude-sonnet-4-5-20250929",
		Text:  text,
		Usage: llm.TokenUsage{InputTokens: in, OutputTokens: out},
	}
}

const validScoresJSON = `{"eScore": 72, "sScore": 65, "gScore": 80, "justification": "solid disclosures"}`

const validFindingsJSON = `{"findings": [
	{"category": "greenwashing", "severity": 4, "summary": "Unverified neutrality claim", "evidence": "page 3", "citation": "report.pdf"},
	{"category": "supply_chain", "severity": 2, "summary": "Limited audit coverage", "evidence": "page 9", "citation": "report.pdf"},
	{"category": "governance", "severity": 1, "summary": "Board tenure disclosure gap", "evidence": "page 15", "citation": "report.pdf"}
]}`

const validActionsJSON = `{"actions": [
	{"title": "Commission third-party audit", "rationale": "Verify claims.", "priority": 1, "expectedImpact": 10, "costEstimate": 50000, "confidence": 85, "citations": ["report.pdf"]},
	{"title": "Expand supplier audits", "rationale": "Close coverage gaps.", "priority": 2, "expectedImpact": 6, "costEstimate": 20000, "confidence": 70, "citations": []},
	{"title": "Publish board tenure", "rationale": "Improve transparency.", "priority": 3, "expectedImpact": 3, "costEstimate": 0, "confidence": 90, "citations": []},
	{"title": "Set science-based targets", "rationale": "Anchor climate plan.", "priority": 4, "expectedImpact": 12, "costEstimate": 100000, "confidence": 60, "citations": ["report.pdf"]}
]}`

// scriptPipeline registers the four stage responses in call order.
func scriptPipeline(m *mockLLM) {
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("document analysis text", 500, 300), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse(validScoresJSON, 400, 100), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse(validFindingsJSON, 450, 200), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse(validActionsJSON, 420, 250), nil).Once()
}
