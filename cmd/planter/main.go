// Command planter is the operator CLI for the spatial anchoring engine:
// store diagnostics, session export, session deletion, and a scripted
// end-to-end simulation.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/treemark/anchor/internal/config"
	"github.com/treemark/anchor/internal/database"
	"github.com/treemark/anchor/internal/logging"
	"github.com/treemark/anchor/internal/store/gormstore"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgDir string

	zlog       zerolog.Logger
	logManager *logging.SlogManager
	dbManager  *database.Manager
)

var rootCmd = &cobra.Command{
	Use:           "planter",
	Short:         "Spatial anchoring engine for planted field markers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cfgDir); err != nil {
			return err
		}

		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()

		logManager = logging.NewSlogManager()
		graylogAddr := ""
		if config.GetBool("graylog.enabled") {
			graylogAddr = config.GetString("graylog.address")
		}
		logManager.Setup(openLogFile(), config.GetString("logLevel"), graylogAddr)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Dumps the in-memory database to disk when configured.
		if dbManager != nil {
			if err := dbManager.Close(); err != nil {
				zlog.Warn().Err(err).Msg("Failed to close database")
			}
		}
		if logManager != nil {
			_ = logManager.Close()
		}
	},
}

// openLogFile creates the session log file. Logging falls back to
// stdout-only when the logs directory is unavailable. Returns io.Writer so
// a failed open yields a nil interface, not a typed nil *os.File.
func openLogFile() io.Writer {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil
	}
	f, err := os.Create(logging.LogFilePath(logsDir, "planter", time.Now()))
	if err != nil {
		return nil
	}
	return f
}

// openStore connects to the configured database (Postgres with SQLite
// fallback) and returns a ready store. The connection is owned by the
// package-level manager and released after the command runs.
func openStore() (*gormstore.Backend, error) {
	dbm := database.NewManager(zlog)
	if err := dbm.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbm.Setup(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	dbManager = dbm
	return gormstore.New(gormstore.Dependencies{
		DB:         dbm.DB,
		LogManager: logManager,
	}), nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", ".", "directory containing planter.cfg.json")

	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
