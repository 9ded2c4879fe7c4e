// Package report renders the BI snapshot for a company: a fixed-layout
// SVG bar chart of the latest ESG scores plus a numeric summary. No model
// call is involved; the output is a pure function of stored data.
package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

// CompanyRef identifies the company the report covers.
type CompanyRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
}

// Summary carries the numeric fields alongside the rendered image.
type Summary struct {
	Documents     int            `json:"documents"`
	Runs          int            `json:"runs"`
	LastRunStatus string         `json:"lastRunStatus"`
	AverageScore  int            `json:"averageScore"`
	ESGScores     map[string]int `json:"esgScores"`
}

// BIReport is the full endpoint payload.
type BIReport struct {
	Company  CompanyRef `json:"company"`
	Summary  Summary    `json:"summary"`
	ImageURL string     `json:"imageUrl"`
}

// Generator composes BI reports from stored data.
type Generator struct {
	store store.Store
}

func NewGenerator(st store.Store) *Generator {
	return &Generator{store: st}
}

// Generate builds the report for a company. Missing scores default to 0;
// a company with no runs still gets a valid report.
func (g *Generator) Generate(ctx context.Context, companyID int64) (*BIReport, error) {
	company, err := g.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var (
		documents []model.Document
		runs      []model.Run
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		documents, err = g.store.ListCompanyDocuments(egCtx, companyID)
		return err
	})
	eg.Go(func() error {
		var err error
		runs, err = g.store.ListCompanyRuns(egCtx, companyID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "report: load company data")
	}

	scores := map[string]int{"environmental": 0, "social": 0, "governance": 0}
	lastStatus := "pending"
	lastUpdated := time.Now()
	if len(runs) > 0 {
		latest := runs[0]
		lastStatus = string(latest.Status)
		if latest.CompletedAt != nil {
			lastUpdated = *latest.CompletedAt
		} else {
			lastUpdated = latest.StartedAt
		}
		metrics, err := g.store.ListRunMetrics(ctx, latest.ID)
		if err != nil {
			return nil, eris.Wrap(err, "report: load metrics")
		}
		for _, m := range metrics {
			scores[string(m.Category)] = int(math.Round(m.Value))
		}
	}

	avg := int(math.Round(float64(scores["environmental"]+scores["social"]+scores["governance"]) / 3))

	svg := buildSVG(svgParams{
		CompanyName:   company.Name,
		Ticker:        company.Ticker,
		Scores:        scores,
		Documents:     len(documents),
		Runs:          len(runs),
		LastUpdated:   lastUpdated,
		LastRunStatus: lastStatus,
		AverageScore:  avg,
	})

	return &BIReport{
		Company: CompanyRef{ID: company.ID, Name: company.Name, Ticker: company.Ticker},
		Summary: Summary{
			Documents:     len(documents),
			Runs:          len(runs),
			LastRunStatus: lastStatus,
			AverageScore:  avg,
			ESGScores:     scores,
		},
		ImageURL: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
	}, nil
}

type svgParams struct {
	CompanyName   string
	Ticker        string
	Scores        map[string]int
	Documents     int
	Runs          int
	LastUpdated   time.Time
	LastRunStatus string
	AverageScore  int
}

var statusCaser = cases.Title(language.English)

// buildSVG renders the fixed 640x360 layout: header, summary block, and a
// three-bar chart of the category scores.
func buildSVG(p svgParams) string {
	const (
		width        = 640
		height       = 360
		chartOriginX = 80
		chartOriginY = 260
		chartHeight  = 180
		barWidth     = 80
		gap          = 50
	)

	categories := []struct {
		key   string
		label string
		color string
	}{
		{"environmental", "Environmental", "#4caf50"},
		{"social", "Social", "#2196f3"},
		{"governance", "Governance", "#ab47bc"},
	}

	var bars strings.Builder
	for i, cat := range categories {
		value := p.Scores[cat.key]
		if value < 0 {
			value = 0
		}
		if value > 100 {
			value = 100
		}
		barHeight := float64(value) / 100 * chartHeight
		x := float64(chartOriginX + i*(barWidth+gap))
		y := chartOriginY - barHeight
		fmt.Fprintf(&bars, `
    <rect x="%.0f" y="%.0f" width="%d" height="%.0f" rx="8" fill="%s" />
    <text x="%.0f" y="%.0f" text-anchor="middle" font-size="16" font-family="Inter" fill="#111827" font-weight="600">%d</text>
    <text x="%.0f" y="%d" text-anchor="middle" font-size="12" font-family="Inter" fill="#4b5563">%s</text>`,
			x, y, barWidth, barHeight, cat.color,
			x+barWidth/2, y-10, value,
			x+barWidth/2, chartOriginY+24, cat.label)
	}

	summaryLines := []string{
		fmt.Sprintf("Documents: %d", p.Documents),
		fmt.Sprintf("Runs: %d", p.Runs),
		"Last Run Status: " + statusCaser.String(p.LastRunStatus),
		fmt.Sprintf("Avg ESG Score: %d", p.AverageScore),
	}
	var summary strings.Builder
	for i, line := range summaryLines {
		fmt.Fprintf(&summary, `
  <text x="%d" y="%d" font-size="14" font-family="Inter" fill="#111827">%s</text>`,
			width-220, 140+i*24, escapeSVG(line))
	}

	title := escapeSVG(p.CompanyName)
	if p.Ticker != "" {
		title += " (" + escapeSVG(p.Ticker) + ")"
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
  <rect width="%d" height="%d" fill="#f9fafb" rx="24"/>
  <text x="40" y="60" font-size="24" font-family="Inter" fill="#111827" font-weight="600">%s</text>
  <text x="40" y="88" font-size="14" font-family="Inter" fill="#6b7280">ESG BI Snapshot</text>
  <text x="%d" y="60" font-size="12" font-family="Inter" fill="#6b7280" text-anchor="end">Updated %s</text>
  <line x1="40" y1="110" x2="%d" y2="110" stroke="#e5e7eb" stroke-width="1" />
  <text x="40" y="140" font-size="16" font-family="Inter" fill="#111827" font-weight="600">Overview</text>%s
  <g>%s
  </g>
</svg>`,
		width, height, width, height,
		width, height,
		title,
		width-40, escapeSVG(p.LastUpdated.Format("Jan 2, 2006")),
		width-40,
		summary.String(),
		bars.String())
}

var svgEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeSVG(s string) string {
	return svgEscaper.Replace(s)
}
