package cli

import (
	"github.com/spf13/cobra"

	"market-replay/internal/scenario"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in market scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(scenario.Catalog)
			}
			for _, s := range scenario.Catalog {
				output.Bold("%s  [%s]", s.Name, s.Slug)
				output.Printf("  %s → %s  difficulty: %s  risk-free: %.2f%%\n",
					s.StartDate, s.EndDate, s.Difficulty, s.RiskFreeRate*100)
				output.Dim("  %s", s.Description)
				for _, ev := range s.Events {
					output.Printf("    %s  %s\n", ev.Date, ev.Label)
				}
			}
			return nil
		},
	}
}
