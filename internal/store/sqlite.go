// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "market-replay/internal/errors"
	"market-replay/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Completed simulation runs
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		analytics TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-day snapshots of a run
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		date TEXT NOT NULL,
		total_value REAL NOT NULL,
		cash_balance REAL NOT NULL,
		day_return REAL NOT NULL,
		cumulative_return REAL NOT NULL,
		projected INTEGER DEFAULT 0,
		positions TEXT,
		UNIQUE(run_id, date)
	);

	-- Rule fire log of a run
	CREATE TABLE IF NOT EXISTS rule_fires (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		rule_id TEXT NOT NULL,
		rule_label TEXT,
		date TEXT NOT NULL,
		action TEXT
	);

	-- Cached daily bars
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		projected INTEGER DEFAULT 0,
		UNIQUE(ticker, date)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
	CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, date);
	CREATE INDEX IF NOT EXISTS idx_rule_fires_run ON rule_fires(run_id);
	CREATE INDEX IF NOT EXISTS idx_bars_ticker ON bars(ticker, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists a completed run with its history and rule-fire log in
// one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, record RunRecord, history []models.PortfolioSnapshot, rulesLog []models.RuleFireEvent) error {
	analyticsJSON, err := json.Marshal(record.Analytics)
	if err != nil {
		return fmt.Errorf("marshaling analytics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer tx.Rollback()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, analytics, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.Scenario, string(analyticsJSON), createdAt); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, snap := range history {
		positionsJSON, err := json.Marshal(snap.Positions)
		if err != nil {
			return fmt.Errorf("marshaling positions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (run_id, date, total_value, cash_balance, day_return, cumulative_return, projected, positions)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, snap.Date, snap.TotalValue, snap.CashBalance, snap.DayReturn,
			snap.CumulativeReturn, boolToInt(snap.Projected), string(positionsJSON)); err != nil {
			return fmt.Errorf("inserting snapshot %s: %w", snap.Date, err)
		}
	}

	for _, fire := range rulesLog {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rule_fires (run_id, rule_id, rule_label, date, action) VALUES (?, ?, ?, ?, ?)`,
			record.ID, fire.RuleID, fire.RuleLabel, fire.Date, fire.Action); err != nil {
			return fmt.Errorf("inserting rule fire: %w", err)
		}
	}

	return tx.Commit()
}

// GetRuns returns run summaries, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error) {
	query := `SELECT id, scenario, analytics, created_at FROM runs`
	var args []interface{}
	if filter.Scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, filter.Scenario)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var analyticsJSON string
		if err := rows.Scan(&record.ID, &record.Scenario, &analyticsJSON, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(analyticsJSON), &record.Analytics); err != nil {
			return nil, fmt.Errorf("unmarshaling analytics: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRunHistory returns a run's snapshots in date order.
func (s *SQLiteStore) GetRunHistory(ctx context.Context, runID string) ([]models.PortfolioSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, total_value, cash_balance, day_return, cumulative_return, projected, positions
		 FROM snapshots WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var history []models.PortfolioSnapshot
	for rows.Next() {
		var snap models.PortfolioSnapshot
		var projected int
		var positionsJSON string
		if err := rows.Scan(&snap.Date, &snap.TotalValue, &snap.CashBalance, &snap.DayReturn,
			&snap.CumulativeReturn, &projected, &positionsJSON); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snap.Projected = projected != 0
		if positionsJSON != "" {
			if err := json.Unmarshal([]byte(positionsJSON), &snap.Positions); err != nil {
				return nil, fmt.Errorf("unmarshaling positions: %w", err)
			}
		}
		history = append(history, snap)
	}
	if len(history) == 0 {
		return nil, apperrors.ErrRunNotFound
	}
	return history, rows.Err()
}

// GetRunRuleLog returns a run's rule-fire rows in insertion order.
func (s *SQLiteStore) GetRunRuleLog(ctx context.Context, runID string) ([]models.RuleFireEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, rule_label, date, action FROM rule_fires WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var log []models.RuleFireEvent
	for rows.Next() {
		var fire models.RuleFireEvent
		if err := rows.Scan(&fire.RuleID, &fire.RuleLabel, &fire.Date, &fire.Action); err != nil {
			return nil, fmt.Errorf("scanning rule fire: %w", err)
		}
		log = append(log, fire)
	}
	return log, rows.Err()
}

// SaveSeries caches a ticker's bars, replacing any overlapping dates.
func (s *SQLiteStore) SaveSeries(ctx context.Context, ticker string, series models.PriceSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO bars (ticker, date, open, high, low, close, volume, projected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range series {
		if _, err := stmt.ExecContext(ctx, ticker, bar.Date, bar.Open, bar.High, bar.Low,
			bar.Close, bar.Volume, boolToInt(bar.Projected)); err != nil {
			return fmt.Errorf("inserting bar %s %s: %w", ticker, bar.Date, err)
		}
	}
	return tx.Commit()
}

// GetSeries returns a ticker's cached bars in date order.
func (s *SQLiteStore) GetSeries(ctx context.Context, ticker string) (models.PriceSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, open, high, low, close, volume, projected FROM bars WHERE ticker = ? ORDER BY date`, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var series models.PriceSeries
	for rows.Next() {
		var bar models.PricePoint
		var projected int
		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &projected); err != nil {
			return nil, fmt.Errorf("scanning bar: %w", err)
		}
		bar.Projected = projected != 0
		series = append(series, bar)
	}
	if len(series) == 0 {
		return nil, apperrors.ErrSeriesNotFound
	}
	return series, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
