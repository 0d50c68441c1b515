package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitcoin-watcher-go/internal/analyzer"
	"bitcoin-watcher-go/internal/binance"
	"bitcoin-watcher-go/internal/config"
	"bitcoin-watcher-go/internal/database"
	"bitcoin-watcher-go/internal/lease"
	"bitcoin-watcher-go/internal/logger"
	"bitcoin-watcher-go/internal/metrics"
	"bitcoin-watcher-go/internal/notification"
	"bitcoin-watcher-go/internal/pricefeed"
	"bitcoin-watcher-go/internal/secrets"
	"bitcoin-watcher-go/internal/store"
	"bitcoin-watcher-go/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
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

	prices := store.NewPriceStore(db)
	signals := store.NewSignalStore(db)
	notifications := store.NewNotificationStore(db)
	settings := store.NewSettingsStore(db)
	trades := store.NewTradeStore(db)
	failures := store.NewFailedTradeStore(db)

	secretStore := secrets.EnvStore{}

	// Select the notification backend
	var dispatcher notification.Dispatcher
	switch cfg.Notifier.Provider {
	case "fcm":
		creds, err := secretStore.NotificationCredentials()
		if err != nil || creds.FCMServerKey == "" {
			log.Fatal("FCM provider selected but FCM_SERVER_KEY is not set", zap.Error(err))
		}
		dispatcher = notification.NewFCMDispatcher(creds.FCMServerKey, log)
	default:
		dispatcher = notification.NewLogDispatcher(log)
	}

	clientFactory := func(creds secrets.ExchangeCredentials, sandbox bool) binance.Client {
		return binance.NewRestClient(creds.APIKey, creds.APISecret, sandbox, binance.Options{
			RateLimit:      cfg.Binance.RateLimit,
			RateLimitBurst: cfg.Binance.RateLimitBurst,
		}, log)
	}
	tr := trader.New(log, secretStore, trades, failures, clientFactory,
		cfg.Watcher.Symbol, cfg.Watcher.BaseAsset, cfg.Watcher.QuoteAsset)

	cycleInterval := time.Duration(cfg.Watcher.CycleInterval) * time.Second

	// The cycle lease is optional: no redis address, no overlap guard.
	var cycleLease *lease.Lease
	if cfg.Redis.Addr != "" {
		cycleLease, err = lease.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 2*cycleInterval, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer cycleLease.Close()
		log.Info("Cycle lease enabled", zap.String("addr", cfg.Redis.Addr))
	}

	m := metrics.NewMetrics()
	metricsServer := metrics.NewServer(fmt.Sprintf(":%d", cfg.Server.MetricsPort), log)
	metricsServer.Start()

	feed := pricefeed.New(prices, m,
		cfg.Watcher.CoinGeckoAssetID, cfg.Watcher.VSCurrency,
		time.Duration(cfg.Watcher.FeedInterval)*time.Second, log)

	analysis := analyzer.New(log, prices, signals, notifications, settings,
		dispatcher, tr, cycleLease, m,
		time.Duration(cfg.Watcher.LookbackMinutes)*time.Minute,
		cfg.Notifier.Topic, cycleInterval)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	go feed.Run(ctx)
	analysis.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		log.Warn("Metrics server shutdown failed", zap.Error(err))
	}

	log.Info("Watcher has been shut down.")
}
