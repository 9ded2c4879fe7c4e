package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

func newAgentTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestRunner_EndToEnd(t *testing.T) {
	st := newAgentTestStore(t)
	ctx := context.Background()

	company, err := st.CreateCompany(ctx, model.Company{Name: "Acme"})
	require.NoError(t, err)
	_, err = st.CreateDocument(ctx, model.Document{
		CompanyID: company.ID,
		Kind:      model.DocumentKindPDF,
		Filename:  "report.pdf",
		Content:   "sustainability report content",
	})
	require.NoError(t, err)

	m := new(mockLLM)
	scriptPipeline(m)

	runner := NewRunner(st, NewPipeline(m, "claude-sonnet-4-5-20250929", 4096), time.Minute)

	run, err := runner.Start(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(shutdownCtx))

	final, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, final.Status)
	assert.Equal(t, "claude-sonnet-4-5-20250929", final.Model)
	assert.Positive(t, final.TokenIn)
	assert.Positive(t, final.TokenOut)
	assert.Positive(t, final.Cost)
	require.NotNil(t, final.CompletedAt)

	metrics, err := st.ListRunMetrics(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, metrics, 3)

	findings, err := st.ListRunFindings(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	// "greenwashing" collapses to environmental and flags the finding.
	assert.Equal(t, model.FindingEnvironmental, findings[0].Category)
	assert.True(t, findings[0].IsGreenwashing)
	assert.Equal(t, model.SeverityCritical, findings[0].Severity)
	assert.Equal(t, model.FindingSocial, findings[1].Category)
	assert.Equal(t, model.SeverityMedium, findings[1].Severity)

	actions, err := st.ListRunActions(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, actions, 4)
	assert.Equal(t, model.PriorityCritical, actions[0].Priority)
	assert.Equal(t, model.ActionStatusProposed, actions[0].Status)
	assert.Equal(t, "50000", actions[0].EstimatedCost)
}

func TestRunner_StageFailureWritesNoRows(t *testing.T) {
	st := newAgentTestStore(t)
	ctx := context.Background()

	company, err := st.CreateCompany(ctx, model.Company{Name: "Doomed Co"})
	require.NoError(t, err)

	m := new(mockLLM)
	m.On("Invoke", mock.Anything, mock.Anything).Return(textResponse("analysis", 1, 1), nil).Once()
	m.On("Invoke", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable")).Once()

	runner := NewRunner(st, NewPipeline(m, "claude-sonnet-4-5-20250929", 4096), time.Minute)

	run, err := runner.Start(ctx, company.ID)
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(shutdownCtx))

	final, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, final.Status)
	assert.Contains(t, final.Error, "model unavailable")

	metrics, err := st.ListRunMetrics(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, metrics)
	findings, err := st.ListRunFindings(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, findings)
	actions, err := st.ListRunActions(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestRunner_StartUnknownCompany(t *testing.T) {
	st := newAgentTestStore(t)
	runner := NewRunner(st, NewPipeline(new(mockLLM), "m", 4096), time.Minute)

	_, err := runner.Start(context.Background(), 4242)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestRunner_RunSync(t *testing.T) {
	st := newAgentTestStore(t)
	ctx := context.Background()
	company, err := st.CreateCompany(ctx, model.Company{Name: "Sync Co"})
	require.NoError(t, err)

	m := new(mockLLM)
	scriptPipeline(m)

	runner := NewRunner(st, NewPipeline(m, "claude-sonnet-4-5-20250929", 4096), time.Minute)
	run, err := runner.RunSync(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
}

func TestRunner_RecoverInterrupted(t *testing.T) {
	st := newAgentTestStore(t)
	ctx := context.Background()
	company, err := st.CreateCompany(ctx, model.Company{Name: "Crash Co"})
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, company.ID)
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	runner := NewRunner(st, NewPipeline(new(mockLLM), "m", 4096), time.Minute)
	n, err := runner.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSaveResults_RowCounts(t *testing.T) {
	st := newAgentTestStore(t)
	ctx := context.Background()
	company, err := st.CreateCompany(ctx, model.Company{Name: "Rows Co"})
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, company.ID)
	require.NoError(t, err)

	in := Input{CompanyID: company.ID, RunID: run.ID, CompanyName: "Rows Co"}
	res := &Result{
		Scores: Scores{EScore: 70, SScore: 60, GScore: 80, Total: 70, Method: "m"},
		Findings: []RawFinding{
			{Category: "diversity", Severity: float64(1), Summary: "a", Evidence: "e", Citation: "c"},
			{Category: "unknown_bucket", Severity: "high", Summary: "b", Evidence: []any{"x"}, Citation: "c"},
			{Category: "governance", Severity: float64(0), Summary: nil, Evidence: nil, Citation: nil},
		},
		Actions: []RawAction{
			{Title: "t1", Rationale: "r1", Priority: float64(1), ExpectedImpact: float64(5), CostEstimate: float64(100), Confidence: float64(80), Citations: []any{"c"}},
			{Title: nil, Rationale: nil, Priority: "low", ExpectedImpact: "oops", CostEstimate: nil, Confidence: nil, Citations: nil},
			{Title: "t3", Rationale: "r3", Priority: float64(5), ExpectedImpact: float64(2), CostEstimate: "about 10k", Confidence: float64(50), Citations: []any{}},
			{Title: "t4", Rationale: "r4", Priority: float64(2), ExpectedImpact: float64(8), CostEstimate: float64(0), Confidence: float64(90), Citations: []any{"a", "b"}},
		},
	}
	require.NoError(t, SaveResults(ctx, st, in, res))

	metrics, err := st.ListRunMetrics(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, time.Now().UTC().Format("2006-01"), metrics[0].Period)
	assert.Equal(t, "overall_score", metrics[0].Metric)

	findings, err := st.ListRunFindings(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, model.FindingSocial, findings[0].Category)
	assert.Equal(t, model.FindingGeneral, findings[1].Category)
	assert.Equal(t, model.SeverityHigh, findings[1].Severity)
	assert.Equal(t, `["x"]`, findings[1].Evidence)
	assert.Equal(t, "No summary provided", findings[2].Summary)
	assert.Equal(t, model.SeverityInfo, findings[2].Severity)

	actions, err := st.ListRunActions(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, actions, 4)
	assert.Equal(t, "Action recommendation", actions[1].Title)
	assert.Equal(t, "No rationale provided", actions[1].Description)
	assert.Equal(t, model.PriorityLow, actions[1].Priority)
	assert.Zero(t, actions[1].EstimatedImpact)
	assert.Equal(t, "", actions[1].EstimatedCost)
	assert.Equal(t, "about 10k", actions[2].EstimatedCost)
	assert.Equal(t, `["a","b"]`, actions[3].Reasoning)

	// Not idempotent: a second call duplicates every row.
	require.NoError(t, SaveResults(ctx, st, in, res))
	metrics, err = st.ListRunMetrics(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, metrics, 6)
}
