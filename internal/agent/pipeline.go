// Package agent implements the four-stage ESG analysis pipeline and its
// background run lifecycle: document analysis, score extraction, findings
// detection, and action generation, each a single model call over an
// accumulating text context.
package agent

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/pkg/llm"
)

// Input carries everything a pipeline run needs.
type Input struct {
	CompanyID   int64
	RunID       int64
	CompanyName string
	Documents   []string
}

// Scores is the normalized output of the score-extraction stage.
type Scores struct {
	EScore int
	SScore int
	GScore int
	Total  int
	Method string
}

// RawFinding is the loosely-typed shape the findings stage returns.
// Fields stay untyped because the model routinely mixes numbers, strings,
// and structured values; normalization happens at save time.
type RawFinding struct {
	Category any `json:"category"`
	Severity any `json:"severity"`
	Summary  any `json:"summary"`
	Evidence any `json:"evidence"`
	Citation any `json:"citation"`
}

// RawAction is the loosely-typed shape the action stage returns.
type RawAction struct {
	Title          any `json:"title"`
	Rationale      any `json:"rationale"`
	Priority       any `json:"priority"`
	ExpectedImpact any `json:"expectedImpact"`
	CostEstimate   any `json:"costEstimate"`
	Confidence     any `json:"confidence"`
	Citations      any `json:"citations"`
}

// Result aggregates the pipeline's output plus token accounting.
type Result struct {
	Scores   Scores
	Findings []RawFinding
	Actions  []RawAction
	Usage    llm.TokenUsage
	Model    string
}

// Pipeline runs the four analysis stages in order. A model-call failure
// at any stage aborts the run; malformed model output never does — the
// structured stages degrade to zero scores or empty slices instead.
type Pipeline struct {
	llm       llm.Client
	model     string
	maxTokens int64
}

func NewPipeline(client llm.Client, modelID string, maxTokens int64) *Pipeline {
	return &Pipeline{llm: client, model: modelID, maxTokens: maxTokens}
}

// Run executes all four stages for one analysis run.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	zap.L().Info("starting analysis",
		zap.String("company", in.CompanyName),
		zap.Int64("run_id", in.RunID),
	)

	res := &Result{Model: p.model}

	analysis, err := p.analyzeDocuments(ctx, in, res)
	if err != nil {
		return nil, eris.Wrap(err, "stage analyze")
	}

	scores, err := p.extractScores(ctx, analysis, res)
	if err != nil {
		return nil, eris.Wrap(err, "stage scores")
	}
	res.Scores = scores

	findings, err := p.detectFindings(ctx, analysis, res)
	if err != nil {
		return nil, eris.Wrap(err, "stage findings")
	}
	res.Findings = findings

	actions, err := p.generateActions(ctx, in, scores, findings, res)
	if err != nil {
		return nil, eris.Wrap(err, "stage actions")
	}
	res.Actions = actions

	zap.L().Info("analysis complete",
		zap.Int64("run_id", in.RunID),
		zap.Int("e_score", scores.EScore),
		zap.Int("s_score", scores.SScore),
		zap.Int("g_score", scores.GScore),
		zap.Int("findings", len(findings)),
		zap.Int("actions", len(actions)),
	)
	res.Usage.LogCost(p.model, "esg_analysis")

	return res, nil
}

func (p *Pipeline) analyzeDocuments(ctx context.Context, in Input, res *Result) (string, error) {
	resp, err := p.llm.Invoke(ctx, llm.Request{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    analyzeSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: analyzeUserPrompt(in.CompanyName, in.Documents)},
		},
	})
	if err != nil {
		return "", err
	}
	res.Usage = res.Usage.Add(resp.Usage)
	return ExtractText(resp.Text), nil
}

func (p *Pipeline) extractScores(ctx context.Context, analysis string, res *Result) (Scores, error) {
	resp, err := p.llm.Invoke(ctx, llm.Request{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    scoreSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: scoreUserPrompt(analysis)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "esg_scores", Schema: scoresSchema},
	})
	if err != nil {
		return Scores{}, err
	}
	res.Usage = res.Usage.Add(resp.Usage)

	type scorePayload struct {
		EScore        any `json:"eScore"`
		SScore        any `json:"sScore"`
		GScore        any `json:"gScore"`
		Justification any `json:"justification"`
	}
	payload, strategy := ExtractJSON(resp.Text, scorePayload{})
	zap.L().Debug("score extraction", zap.String("strategy", strategy))

	e := clampScore(payload.EScore)
	s := clampScore(payload.SScore)
	g := clampScore(payload.GScore)

	method := "AI-powered analysis using LLM."
	if justification := ensureString(payload.Justification, ""); justification != "" {
		method = fmt.Sprintf("AI-powered analysis using LLM. %s", justification)
	}

	return Scores{
		EScore: e,
		SScore: s,
		GScore: g,
		Total:  int(math.Round(float64(e+s+g) / 3)),
		Method: method,
	}, nil
}

func (p *Pipeline) detectFindings(ctx context.Context, analysis string, res *Result) ([]RawFinding, error) {
	resp, err := p.llm.Invoke(ctx, llm.Request{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    findingsSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: findingsUserPrompt(analysis)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "findings", Schema: findingsSchema},
	})
	if err != nil {
		return nil, err
	}
	res.Usage = res.Usage.Add(resp.Usage)

	type findingsPayload struct {
		Findings []RawFinding `json:"findings"`
	}
	payload, strategy := ExtractJSON(resp.Text, findingsPayload{})
	zap.L().Debug("findings extraction", zap.String("strategy", strategy))

	return payload.Findings, nil
}

func (p *Pipeline) generateActions(ctx context.Context, in Input, scores Scores, findings []RawFinding, res *Result) ([]RawAction, error) {
	resp, err := p.llm.Invoke(ctx, llm.Request{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    actionsSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: actionsUserPrompt(in.CompanyName, scores, findings)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "action_plan", Schema: actionsSchema},
	})
	if err != nil {
		return nil, err
	}
	res.Usage = res.Usage.Add(resp.Usage)

	type actionsPayload struct {
		Actions []RawAction `json:"actions"`
	}
	payload, strategy := ExtractJSON(resp.Text, actionsPayload{})
	zap.L().Debug("actions extraction", zap.String("strategy", strategy))

	return payload.Actions, nil
}

// BuildDocumentContext renders each stored document as a short summary
// line (kind, filename, leading slice of the excerpt) for the analysis
// stage.
func BuildDocumentContext(docs []model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		excerpt := d.Content
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		name := d.Filename
		if name == "" {
			name = d.URL
		}
		out = append(out, fmt.Sprintf("[%s] %s\n%s", d.Kind, name, excerpt))
	}
	return out
}
