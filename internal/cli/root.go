package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"market-replay/internal/config"
	"market-replay/internal/logging"
	"market-replay/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "replay.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, run history will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "replay",
		Short: "Market Replay - historical market simulator",
		Long: `Market Replay runs a portfolio and a set of automated trading rules
against a historical (or projected) daily price series, one trading
day per tick, and reports performance statistics at the end.

Use 'replay scenarios' to list the built-in market periods.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/market-replay)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"version": Version})
			}
			output.Printf("Market Replay v%s\n", Version)
			return nil
		},
	}
}
