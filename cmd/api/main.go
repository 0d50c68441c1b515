package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitcoin-watcher-go/internal/api"
	"bitcoin-watcher-go/internal/config"
	"bitcoin-watcher-go/internal/database"
	"bitcoin-watcher-go/internal/logger"
	"bitcoin-watcher-go/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database and stores
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	handler := api.NewHandler(log,
		store.NewPriceStore(db),
		store.NewSignalStore(db),
		store.NewNotificationStore(db),
		store.NewSettingsStore(db),
	)

	server := api.NewServer(cfg.Server.Port, handler, log)
	server.Start()

	// Block until a shutdown signal arrives
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}

	log.Info("API server has been shut down.")
}
