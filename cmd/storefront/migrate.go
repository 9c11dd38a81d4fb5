package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return repository.MigrateDB(db, logger)
	},
}
