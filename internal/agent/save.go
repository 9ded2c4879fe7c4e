package agent

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

// SaveResults persists a completed pipeline result: exactly three metric
// rows (one per category, tagged with the current month), one finding row
// per detected finding, and one action row per generated action with
// status proposed.
//
// Not idempotent: calling it twice for the same run duplicates rows.
func SaveResults(ctx context.Context, st store.Store, in Input, res *Result) error {
	period := time.Now().UTC().Format("2006-01")

	categoryScores := []struct {
		category model.Category
		value    int
	}{
		{model.CategoryEnvironmental, res.Scores.EScore},
		{model.CategorySocial, res.Scores.SScore},
		{model.CategoryGovernance, res.Scores.GScore},
	}
	for _, cs := range categoryScores {
		_, err := st.CreateMetric(ctx, model.ESGMetric{
			CompanyID: in.CompanyID,
			RunID:     in.RunID,
			Category:  cs.category,
			Metric:    "overall_score",
			Value:     float64(cs.value),
			Period:    period,
			Source:    res.Scores.Method,
		})
		if err != nil {
			return eris.Wrapf(err, "save metric %s", cs.category)
		}
	}

	for _, f := range res.Findings {
		category := MapFindingCategory(f.Category)
		_, err := st.CreateFinding(ctx, model.Finding{
			CompanyID:      in.CompanyID,
			RunID:          in.RunID,
			Category:       category,
			Severity:       MapSeverity(f.Severity),
			Summary:        ensureString(f.Summary, "No summary provided"),
			Details:        ensureString(f.Citation, ""),
			Evidence:       stringifyEvidence(f.Evidence),
			IsGreenwashing: ensureString(f.Category, "") == "greenwashing",
			Confidence:     0.8,
		})
		if err != nil {
			return eris.Wrap(err, "save finding")
		}
	}

	for _, a := range res.Actions {
		citations := a.Citations
		if citations == nil {
			citations = []any{}
		}
		cost := ""
		if a.CostEstimate != nil {
			cost = ensureString(a.CostEstimate, "0")
		}
		_, err := st.CreateAction(ctx, model.Action{
			CompanyID:       in.CompanyID,
			RunID:           in.RunID,
			Title:           ensureString(a.Title, "Action recommendation"),
			Description:     ensureString(a.Rationale, "No rationale provided"),
			Category:        model.FindingGeneral,
			Priority:        MapPriority(a.Priority),
			EstimatedImpact: coerceNumber(a.ExpectedImpact, 0),
			EstimatedCost:   cost,
			Confidence:      coerceNumber(a.Confidence, 0),
			Reasoning:       stringifyEvidence(citations),
			Status:          model.ActionStatusProposed,
		})
		if err != nil {
			return eris.Wrap(err, "save action")
		}
	}

	zap.L().Info("analysis results saved",
		zap.Int64("run_id", in.RunID),
		zap.Int("findings", len(res.Findings)),
		zap.Int("actions", len(res.Actions)),
	)
	return nil
}
