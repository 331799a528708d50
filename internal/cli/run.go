package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"market-replay/internal/data"
	apperrors "market-replay/internal/errors"
	"market-replay/internal/logging"
	"market-replay/internal/models"
	"market-replay/internal/projection"
	"market-replay/internal/scenario"
	"market-replay/internal/sim"
	"market-replay/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	var scenarioSlug string
	var noSave bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation to completion",
		Long: `Run the configured portfolio and rules against a scenario's price
series, tick by tick, and print the resulting performance statistics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration invalid: %v", err)
				return err
			}

			slug := app.Config.Run.Scenario
			if scenarioSlug != "" {
				slug = scenarioSlug
			}
			scn, ok := scenario.BySlug(slug)
			if !ok {
				output.Error("Unknown scenario %q, try 'replay scenarios'", slug)
				return apperrors.ErrScenarioNotFound
			}

			logger := logging.WithScenario(app.Logger, scn.Slug)

			priceData, err := loadPriceData(app, scn)
			if err != nil {
				output.Error("Loading price data: %v", err)
				return err
			}
			if app.Config.Projection.Days > 0 {
				priceData = projection.ExtendWithProjections(priceData, app.Config.Projection.Days, app.Config.Projection.Seed)
				logger.Info().Int("days", app.Config.Projection.Days).Msg("Extended series with projected bars")
			}

			state := sim.NewSimulation(app.Config.SimulationConfig(scn))
			state = runToCompletion(state, priceData, logger)

			analytics := sim.AnalyzeState(state, priceData)
			logging.LogAnalytics(logger, analytics)

			if app.Store != nil && !noSave {
				record := store.RunRecord{
					ID:        uuid.NewString(),
					Scenario:  scn.Slug,
					CreatedAt: time.Now().UTC(),
					Analytics: analytics,
				}
				if err := app.Store.SaveRun(context.Background(), record, state.History, state.RulesLog); err != nil {
					logger.Warn().Err(err).Msg("Failed to persist run")
				} else {
					output.Dim("Saved run %s", record.ID)
				}
			}

			if output.IsJSON() {
				return output.JSON(analytics)
			}
			printAnalytics(output, scn, analytics)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioSlug, "scenario", "", "scenario slug (overrides config)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	return cmd
}

// loadPriceData loads every ticker the run can touch: allocations, rule
// tickers, and the benchmark when a series for it exists.
func loadPriceData(app *App, scn models.Scenario) (models.PriceDataMap, error) {
	seen := map[string]bool{}
	var tickers []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	for _, alloc := range app.Config.Run.Allocations {
		add(alloc.Ticker)
	}
	for _, rule := range app.Config.Run.Rules {
		add(rule.Action.Ticker)
		for _, cond := range rule.Conditions {
			add(cond.Ticker)
		}
	}

	priceData := make(models.PriceDataMap, len(tickers))
	for _, ticker := range tickers {
		series, err := loadSeries(app, ticker)
		if err != nil {
			return nil, err
		}
		priceData[ticker] = series
	}

	// Benchmark is optional: beta falls back to the portfolio itself.
	if !seen[models.BenchmarkTicker] {
		if series, err := loadSeries(app, models.BenchmarkTicker); err == nil {
			priceData[models.BenchmarkTicker] = series
		}
	}

	return data.ClipToScenario(priceData, scn)
}

// loadSeries reads a ticker's bars from its CSV and refreshes the store
// cache; when the file is absent, previously cached bars serve the run.
func loadSeries(app *App, ticker string) (models.PriceSeries, error) {
	path := filepath.Join(app.Config.Data.Dir, strings.ToLower(ticker)+".csv")
	series, err := data.LoadSeries(ticker, path)
	if err == nil {
		if app.Store != nil {
			if cacheErr := app.Store.SaveSeries(context.Background(), ticker, series); cacheErr != nil {
				app.Logger.Warn().Err(cacheErr).Str("ticker", ticker).Msg("Failed to cache series")
			}
		}
		return series, nil
	}
	if app.Store != nil {
		if cached, cacheErr := app.Store.GetSeries(context.Background(), ticker); cacheErr == nil {
			return cached, nil
		}
	}
	return nil, err
}

// runToCompletion drives the tick loop, logging events as they appear.
func runToCompletion(state models.SimulationState, priceData models.PriceDataMap, logger zerolog.Logger) models.SimulationState {
	for !state.IsComplete {
		seenEvents := len(state.Events)
		seenFires := len(state.RulesLog)
		pending := state.PendingOrders

		state = sim.AdvanceTick(state, priceData)

		snap, ok := state.LastSnapshot()
		if ok {
			for _, order := range pending {
				logging.LogOrder(logger, order, snap.Date)
			}
		}
		for _, fire := range state.RulesLog[seenFires:] {
			logging.LogRuleFired(logger, fire)
		}
		for _, event := range state.Events[seenEvents:] {
			logging.LogDomainEvent(logger, event)
		}
		if ok {
			logging.LogTick(logger, snap)
		}
	}
	return state
}

func printAnalytics(output *Output, scn models.Scenario, a models.SimulationAnalytics) {
	output.Bold("%s (%s → %s)", scn.Name, scn.StartDate, scn.EndDate)
	output.Printf("  Starting value:    $%.2f\n", a.StartingValue)
	output.Printf("  Final value:       $%.2f\n", a.FinalValue)
	output.Gain(a.TotalReturnPct, "  Total return:      %+.2f%%", a.TotalReturnPct*100)
	output.Printf("  Volatility (ann.): %.2f%%\n", a.AnnualizedVolatility*100)
	output.Printf("  Sharpe ratio:      %.2f\n", a.SharpeRatio)
	output.Gain(a.MaxDrawdownPct, "  Max drawdown:      %.2f%%", a.MaxDrawdownPct)
	output.Printf("  Beta:              %.2f\n", a.Beta)
	output.Gain(a.BestDayReturn, "  Best day:          %+.2f%% (%s)", a.BestDayReturn, a.BestDayDate)
	output.Gain(a.WorstDayReturn, "  Worst day:         %+.2f%% (%s)", a.WorstDayReturn, a.WorstDayDate)
	output.Printf("  Rules fired:       %d\n", a.TotalRulesFired)
	output.Printf("  Manual trades:     %d\n", a.TotalManualTrades)
}
