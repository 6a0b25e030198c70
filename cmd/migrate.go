package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtroode/postit-wall/database"
	"github.com/dtroode/postit-wall/internal/config"
	"github.com/dtroode/postit-wall/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		defer stop()

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		logger := logger.New(cfg.LogLevel)

		if cfg.StoreDriver != config.StoreDriverPostgres {
			logger.Info("nothing to migrate", "driver", cfg.StoreDriver)
			return nil
		}

		return runMigrate(ctx, cfg.Database.DSN, logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context, dsn string, logger *logger.Logger) error {
	if err := database.Migrate(ctx, dsn); err != nil {
		return err
	}
	logger.Info("migrations applied")

	return nil
}
