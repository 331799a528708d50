// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"market-replay/internal/models"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "market-replay", "logs", "replay.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithScenario adds a scenario slug to the logger context.
func WithScenario(logger zerolog.Logger, slug string) zerolog.Logger {
	return logger.With().Str("scenario", slug).Logger()
}

// LogTick logs the end-of-tick portfolio state.
func LogTick(logger zerolog.Logger, snap models.PortfolioSnapshot) {
	logger.Debug().
		Str("event", "tick").
		Str("date", snap.Date).
		Float64("total_value", snap.TotalValue).
		Float64("cash", snap.CashBalance).
		Float64("day_return", snap.DayReturn).
		Bool("projected", snap.Projected).
		Msg("Tick complete")
}

// LogOrder logs a queued order about to fill.
func LogOrder(logger zerolog.Logger, order models.TradeOrder, date string) {
	logger.Debug().
		Str("event", "order").
		Str("action", order.Action.ActionName()).
		Str("source", string(order.Source)).
		Str("date", date).
		Msg("Order filling")
}

// LogRuleFired logs a rule firing.
func LogRuleFired(logger zerolog.Logger, fire models.RuleFireEvent) {
	logger.Info().
		Str("event", "rule_fired").
		Str("rule_id", fire.RuleID).
		Str("rule", fire.RuleLabel).
		Str("date", fire.Date).
		Str("action", fire.Action).
		Msg("Rule fired")
}

// LogDomainEvent logs a structured domain event emitted by the engine.
func LogDomainEvent(logger zerolog.Logger, event models.DomainEvent) {
	logger.Info().
		Str("event", string(event.Trigger)).
		Str("date", event.Date).
		Str("ticker", event.Context.Ticker).
		Float64("change_pct", event.Context.ChangePct).
		Float64("portfolio_value", event.Context.PortfolioValue).
		Msg("Domain event")
}

// LogAnalytics logs the final run statistics.
func LogAnalytics(logger zerolog.Logger, a models.SimulationAnalytics) {
	logger.Info().
		Str("event", "analytics").
		Float64("final_value", a.FinalValue).
		Float64("total_return_pct", a.TotalReturnPct*100).
		Float64("sharpe", a.SharpeRatio).
		Float64("max_drawdown_pct", a.MaxDrawdownPct).
		Float64("beta", a.Beta).
		Int("rules_fired", a.TotalRulesFired).
		Msg("Run complete")
}
