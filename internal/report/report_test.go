package report

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func decodeImage(t *testing.T, dataURI string) string {
	t.Helper()
	const prefix = "data:image/svg+xml;base64,"
	require.True(t, strings.HasPrefix(dataURI, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, prefix))
	require.NoError(t, err)
	return string(raw)
}

func TestGenerate_NoRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c, err := st.CreateCompany(ctx, model.Company{Name: "Fresh Co", Ticker: "FRC"})
	require.NoError(t, err)

	rep, err := NewGenerator(st).Generate(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, c.ID, rep.Company.ID)
	assert.Equal(t, 0, rep.Summary.Documents)
	assert.Equal(t, 0, rep.Summary.Runs)
	assert.Equal(t, "pending", rep.Summary.LastRunStatus)
	assert.Equal(t, 0, rep.Summary.AverageScore)
	assert.Equal(t, map[string]int{"environmental": 0, "social": 0, "governance": 0}, rep.Summary.ESGScores)

	svg := decodeImage(t, rep.ImageURL)
	assert.Contains(t, svg, "Fresh Co (FRC)")
	assert.Contains(t, svg, "ESG BI Snapshot")
	assert.Contains(t, svg, "Avg ESG Score: 0")
}

func TestGenerate_WithScores(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	c, err := st.CreateCompany(ctx, model.Company{Name: "Scored Co"})
	require.NoError(t, err)

	run, err := st.CreateRun(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, store.RunUsage{Model: "m"}))

	values := map[model.Category]float64{
		model.CategoryEnvironmental: 70.4,
		model.CategorySocial:        55,
		model.CategoryGovernance:    82.6,
	}
	for cat, v := range values {
		_, err := st.CreateMetric(ctx, model.ESGMetric{
			CompanyID: c.ID, RunID: run.ID, Category: cat, Metric: "score", Value: v,
		})
		require.NoError(t, err)
	}

	_, err = st.CreateDocument(ctx, model.Document{CompanyID: c.ID, Kind: model.DocumentKindPDF, Filename: "r.pdf"})
	require.NoError(t, err)

	rep, err := NewGenerator(st).Generate(ctx, c.ID)
	require.NoError(t, err)

	// 70.4 -> 70, 82.6 -> 83; average of 70, 55, 83 is 69.33 -> 69.
	assert.Equal(t, 70, rep.Summary.ESGScores["environmental"])
	assert.Equal(t, 55, rep.Summary.ESGScores["social"])
	assert.Equal(t, 83, rep.Summary.ESGScores["governance"])
	assert.Equal(t, 69, rep.Summary.AverageScore)
	assert.Equal(t, "completed", rep.Summary.LastRunStatus)
	assert.Equal(t, 1, rep.Summary.Documents)
	assert.Equal(t, 1, rep.Summary.Runs)

	svg := decodeImage(t, rep.ImageURL)
	assert.Contains(t, svg, "Last Run Status: Completed")
	assert.Contains(t, svg, `fill="#4caf50"`)
	assert.Contains(t, svg, `fill="#2196f3"`)
	assert.Contains(t, svg, `fill="#ab47bc"`)
}

func TestGenerate_CompanyMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := NewGenerator(st).Generate(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestBuildSVG_EscapesAndClamps(t *testing.T) {
	svg := buildSVG(svgParams{
		CompanyName:   `Acme & Sons <"quoted">`,
		Scores:        map[string]int{"environmental": 150, "social": -20, "governance": 50},
		LastUpdated:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		LastRunStatus: "failed",
	})

	assert.Contains(t, svg, "Acme &amp; Sons &lt;&quot;quoted&quot;&gt;")
	assert.NotContains(t, svg, "<\"")
	assert.Contains(t, svg, "Updated Aug 28, 2026")
	assert.Contains(t, svg, "Last Run Status: Failed")
	// Over/under-range scores render clamped to [0, 100].
	assert.Contains(t, svg, ">100</text>")
	assert.Contains(t, svg, ">0</text>")
}
