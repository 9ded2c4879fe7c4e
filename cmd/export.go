package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run's scores, findings, and actions to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		company, err := st.GetCompany(cmd.Context(), run.CompanyID)
		if err != nil {
			return err
		}
		metrics, err := st.ListRunMetrics(cmd.Context(), runID)
		if err != nil {
			return err
		}
		findings, err := st.ListRunFindings(cmd.Context(), runID)
		if err != nil {
			return err
		}
		actions, err := st.ListRunActions(cmd.Context(), runID)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("esg-run-%d.xlsx", runID)
		}

		if err := writeWorkbook(out, company, run, metrics, findings, actions); err != nil {
			return err
		}

		zap.L().Info("run exported",
			zap.Int64("run_id", runID),
			zap.String("file", out),
			zap.Int("findings", len(findings)),
			zap.Int("actions", len(actions)),
		)
		return nil
	},
}

func writeWorkbook(path string, company *model.Company, run *model.Run,
	metrics []model.ESGMetric, findings []model.Finding, actions []model.Action) error {

	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return err
	}
	scores := model.ScoresFromMetrics(metrics)
	completedAt := ""
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(time.RFC3339)
	}
	for _, pair := range [][2]string{
		{"Company", company.Name},
		{"Ticker", company.Ticker},
		{"Run ID", strconv.FormatInt(run.ID, 10)},
		{"Status", string(run.Status)},
		{"Model", run.Model},
		{"Started", run.StartedAt.Format(time.RFC3339)},
		{"Completed", completedAt},
		{"Environmental", strconv.Itoa(scores.Environmental)},
		{"Social", strconv.Itoa(scores.Social)},
		{"Governance", strconv.Itoa(scores.Governance)},
		{"Total", strconv.Itoa(scores.Total)},
		{"Cost (USD)", strconv.FormatFloat(run.Cost, 'f', 4, 64)},
	} {
		row := summary.AddRow()
		row.AddCell().Value = pair[0]
		row.AddCell().Value = pair[1]
	}

	metricSheet, err := file.AddSheet("Metrics")
	if err != nil {
		return err
	}
	addHeader(metricSheet, "Category", "Metric", "Value", "Period", "Source")
	for _, m := range metrics {
		row := metricSheet.AddRow()
		row.AddCell().Value = string(m.Category)
		row.AddCell().Value = m.Metric
		row.AddCell().SetFloat(m.Value)
		row.AddCell().Value = m.Period
		row.AddCell().Value = m.Source
	}

	findingSheet, err := file.AddSheet("Findings")
	if err != nil {
		return err
	}
	addHeader(findingSheet, "Category", "Severity", "Summary", "Evidence", "Citation", "Greenwashing")
	for _, f := range findings {
		row := findingSheet.AddRow()
		row.AddCell().Value = string(f.Category)
		row.AddCell().Value = string(f.Severity)
		row.AddCell().Value = f.Summary
		row.AddCell().Value = f.Evidence
		row.AddCell().Value = f.Details
		row.AddCell().SetBool(f.IsGreenwashing)
	}

	actionSheet, err := file.AddSheet("Actions")
	if err != nil {
		return err
	}
	addHeader(actionSheet, "Priority", "Title", "Rationale", "Impact", "Cost", "Confidence", "Status")
	for _, a := range actions {
		row := actionSheet.AddRow()
		row.AddCell().Value = string(a.Priority)
		row.AddCell().Value = a.Title
		row.AddCell().Value = a.Description
		row.AddCell().SetFloat(a.EstimatedImpact)
		row.AddCell().Value = a.EstimatedCost
		row.AddCell().SetFloat(a.Confidence)
		row.AddCell().Value = string(a.Status)
	}

	return file.Save(path)
}

func addHeader(sheet *xlsx.Sheet, names ...string) {
	row := sheet.AddRow()
	for _, name := range names {
		row.AddCell().Value = name
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default esg-run-<id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
