package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/config"
	"storefront/internal/notifier"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	accessLog := logrus.New()
	accessLog.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return err
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	tokens, err := token.NewService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return err
	}

	bot, err := notifier.NewBot(cfg, logger)
	if err != nil {
		// The shop can run without notifications.
		logger.Warn("Failed to initialize Telegram bot, continuing without it", zap.Error(err))
		bot = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(db, cfg, tokens, bot, logger, accessLog)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		return bot.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
