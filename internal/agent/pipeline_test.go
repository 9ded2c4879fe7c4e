package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/model"
)

func TestPipeline_Run_AllStages(t *testing.T) {
	m := new(mockLLM)
	scriptPipeline(m)

	p := NewPipeline(m, "claude-sonnet-4-5-20250929", 4096)
	res, err := p.Run(context.Background(), Input{
		CompanyID:   1,
		RunID:       1,
		CompanyName: "Acme",
		Documents:   []string{"[pdf] report.pdf\nsome excerpt"},
	})
	require.NoError(t, err)

	assert.Equal(t, 72, res.Scores.EScore)
	assert.Equal(t, 65, res.Scores.SScore)
	assert.Equal(t, 80, res.Scores.GScore)
	// total is the rounded mean: (72+65+80)/3 = 72.33 -> 72.
	assert.Equal(t, 72, res.Scores.Total)
	assert.Contains(t, res.Scores.Method, "solid disclosures")

	require.Len(t, res.Findings, 3)
	assert.Equal(t, "greenwashing", res.Findings[0].Category)
	require.Len(t, res.Actions, 4)

	// Token usage accumulates across all four calls.
	assert.Equal(t, int64(500+400+450+420), res.Usage.InputTokens)
	assert.Equal(t, int64(300+100+200+250), res.Usage.OutputTokens)

	m.AssertNumberOfCalls(t, "Invoke", 4)
}

func TestPipeline_Run_MalformedScoresDegradeToZero(t *testing.T) {
	m := new(mockLLM)
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("analysis", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("not json", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("also not json", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("still not json", 1, 1), nil).Once()

	p := NewPipeline(m, "claude-sonnet-4-5-20250929", 4096)
	res, err := p.Run(context.Background(), Input{CompanyName: "Acme"})
	require.NoError(t, err, "malformed output degrades, never errors")

	assert.Equal(t, Scores{Method: "AI-powered analysis using LLM."}, res.Scores)
	assert.Empty(t, res.Findings)
	assert.Empty(t, res.Actions)
}

func TestPipeline_Run_ScoreClampingAndTotal(t *testing.T) {
	m := new(mockLLM)
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("analysis", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(
		textResponse(`{"eScore": 150, "sScore": -10, "gScore": "62", "justification": ""}`, 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse(`{"findings": []}`, 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse(`{"actions": []}`, 1, 1), nil).Once()

	p := NewPipeline(m, "claude-sonnet-4-5-20250929", 4096)
	res, err := p.Run(context.Background(), Input{CompanyName: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, 100, res.Scores.EScore)
	assert.Equal(t, 0, res.Scores.SScore)
	assert.Equal(t, 62, res.Scores.GScore)
	// (100+0+62)/3 = 54
	assert.Equal(t, 54, res.Scores.Total)
}

func TestPipeline_Run_ModelErrorPropagates(t *testing.T) {
	m := new(mockLLM)
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("analysis", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(nil, errors.New("http 529")).Once()

	p := NewPipeline(m, "claude-sonnet-4-5-20250929", 4096)
	_, err := p.Run(context.Background(), Input{CompanyName: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage scores")
}

func TestBuildDocumentContext(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	docs := []model.Document{
		{Kind: model.DocumentKindPDF, Filename: "report.pdf", Content: string(long)},
		{Kind: model.DocumentKindURL, URL: "https://example.com/esg", Content: "short"},
	}
	got := BuildDocumentContext(docs)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "[pdf] report.pdf")
	assert.LessOrEqual(t, len(got[0]), len("[pdf] report.pdf\n")+200)
	assert.Contains(t, got[1], "https://example.com/esg")
	assert.Contains(t, got[1], "short")
}
