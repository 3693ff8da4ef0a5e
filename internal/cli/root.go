// Package cli holds the tracker's cobra commands.
package cli

import (
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd builds the command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "task-tracker",
		Short: "Task tracker API for workers, teams, projects and tasks",
		Long: `task-tracker serves the JSON API and offers maintenance commands
against the same SQLite database.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")

	// running the bare binary serves the API
	serveCmd := ServeCmd()
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(CreateWorkerCmd())
	return rootCmd
}

// bootstrap loads config and opens the database for a command.
func bootstrap(cmd *cobra.Command) (config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DBPath = path
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	logConfig(log, cfg)
	db, err := database.Open(cfg.DBPath, cfg.DBLogLevel, log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, db, nil
}

// logConfig reports what Load could not log itself.
func logConfig(log *zap.Logger, cfg config.Config) {
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using environment and defaults")
	}
	for _, w := range cfg.Warnings {
		log.Warn("config setting ignored", zap.String("reason", w))
	}
}
