package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immopro/server/config"
	"immopro/server/internal/api"
	"immopro/server/internal/database"
	"immopro/server/internal/logging"
	"immopro/server/internal/processor"
	"immopro/server/internal/queue"
	"immopro/server/internal/scheduler"
	"immopro/server/internal/session"
	"immopro/server/internal/telegram"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database
	source := cfg.Database.Path
	if cfg.Database.Driver == "mysql" {
		source = cfg.Database.DSN
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Opening database")
	db, err := database.Open(cfg.Database.Driver, source)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	sessions := session.NewStore(cfg.Sessions.TTL, cfg.Sessions.CleanupInterval, logger)

	// Alerts for saved scenarios
	scenarioQueue := queue.NewScenarioQueue(cfg.Alerts.QueueBufferSize, logger)
	notifier := telegram.NewService(telegram.Config{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		APIURL:   cfg.Telegram.APIURL,
	}, logger)
	alerts := processor.NewAlertProcessor(db.DB(), scenarioQueue, notifier, processor.FilterFromConfig(cfg), cfg, logger)
	alerts.Start()
	scenarioQueue.Start()

	sched := scheduler.NewScheduler(db, sessions, cfg, logger)
	if err := sched.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}

	handler := api.NewHandler(db, sessions, scenarioQueue, logger)
	router := api.NewRouter(handler, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	sched.Stop()
	// drain accepted batches before the processor is cancelled
	if err := scenarioQueue.Close(); err != nil {
		logger.WithError(err).Error("Failed to close scenario queue")
	}
	alerts.Stop()
	logger.Info("Server exited")
}
