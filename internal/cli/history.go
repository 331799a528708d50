package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"market-replay/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	var scenarioSlug string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return fmt.Errorf("store unavailable")
			}

			records, err := app.Store.GetRuns(context.Background(), store.RunFilter{
				Scenario: scenarioSlug,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("No saved runs")
				return nil
			}
			for _, r := range records {
				output.Bold("%s  %s  %s", r.CreatedAt.Format("2006-01-02 15:04"), r.Scenario, r.ID)
				output.Gain(r.Analytics.TotalReturnPct,
					"  return %+.2f%%  sharpe %.2f  drawdown %.2f%%  rules fired %d",
					r.Analytics.TotalReturnPct*100, r.Analytics.SharpeRatio,
					r.Analytics.MaxDrawdownPct, r.Analytics.TotalRulesFired)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioSlug, "scenario", "", "filter by scenario slug")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
