// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"market-replay/internal/models"
)

// RunRecord summarizes one completed simulation run.
type RunRecord struct {
	ID        string                     `json:"id"`
	Scenario  string                     `json:"scenario"`
	CreatedAt time.Time                  `json:"created_at"`
	Analytics models.SimulationAnalytics `json:"analytics"`
}

// RunFilter restricts run queries.
type RunFilter struct {
	Scenario string
	Limit    int
}

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Completed runs
	SaveRun(ctx context.Context, record RunRecord, history []models.PortfolioSnapshot, rulesLog []models.RuleFireEvent) error
	GetRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error)
	GetRunHistory(ctx context.Context, runID string) ([]models.PortfolioSnapshot, error)
	GetRunRuleLog(ctx context.Context, runID string) ([]models.RuleFireEvent, error)

	// Price series cache
	SaveSeries(ctx context.Context, ticker string, series models.PriceSeries) error
	GetSeries(ctx context.Context, ticker string) (models.PriceSeries, error)

	// Lifecycle
	Close() error
}
