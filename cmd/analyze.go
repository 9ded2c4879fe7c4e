package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company-id>",
	Short: "Run an ESG analysis synchronously and print the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		companyID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid company id %q", args[0])
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Runner.RunSync(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		if run.Status != model.RunStatusCompleted {
			return fmt.Errorf("run %d finished %s: %s", run.ID, run.Status, run.Error)
		}

		metrics, err := env.Store.ListRunMetrics(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		findings, err := env.Store.ListRunFindings(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		actions, err := env.Store.ListRunActions(cmd.Context(), run.ID)
		if err != nil {
			return err
		}

		scores := model.ScoresFromMetrics(metrics)
		fmt.Printf("Run %d completed (model %s, $%.4f)\n", run.ID, run.Model, run.Cost)
		fmt.Printf("Scores: E=%d S=%d G=%d total=%d\n",
			scores.Environmental, scores.Social, scores.Governance, scores.Total)
		fmt.Printf("Findings: %d\n", len(findings))
		for _, f := range findings {
			fmt.Printf("  [%s/%s] %s\n", f.Category, f.Severity, f.Summary)
		}
		fmt.Printf("Actions: %d\n", len(actions))
		for _, a := range actions {
			fmt.Printf("  [%s] %s\n", a.Priority, a.Title)
		}

		zap.L().Info("analysis complete",
			zap.Int64("run_id", run.ID),
			zap.Int("findings", len(findings)),
			zap.Int("actions", len(actions)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
