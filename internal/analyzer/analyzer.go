// Package analyzer runs the signal analysis cycle: prices in, indicators,
// classification, transition detection, then notification and trade execution.
package analyzer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bitcoin-watcher-go/internal/lease"
	"bitcoin-watcher-go/internal/metrics"
	"bitcoin-watcher-go/internal/models"
	"bitcoin-watcher-go/internal/notification"
	"bitcoin-watcher-go/internal/signal"
	"bitcoin-watcher-go/internal/store"
	"bitcoin-watcher-go/internal/trader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CycleResult is the structured outcome of one analysis cycle.
type CycleResult struct {
	CycleID          string        `json:"cycle_id"`
	Signal           models.Signal `json:"signal"`
	SignalID         uint          `json:"signal_id"`
	Transition       bool          `json:"transition"`
	NotificationSent bool          `json:"notification_sent"`
	TradeExecuted    bool          `json:"trade_executed"`
}

// Analyzer owns the per-cycle decision flow. It keeps no state between
// cycles: the last signal, the settings and all balances are re-read from the
// stores and the exchange on every run.
type Analyzer struct {
	logger        *zap.Logger
	prices        *store.PriceStore
	signals       *store.SignalStore
	notifications *store.NotificationStore
	settings      *store.SettingsStore
	dispatcher    notification.Dispatcher
	trader        *trader.Trader
	cycleLease    *lease.Lease // nil disables the overlap guard
	metrics       *metrics.Metrics
	lookback      time.Duration
	topic         string
	interval      time.Duration
}

// New creates an Analyzer.
func New(
	logger *zap.Logger,
	prices *store.PriceStore,
	signals *store.SignalStore,
	notifications *store.NotificationStore,
	settings *store.SettingsStore,
	dispatcher notification.Dispatcher,
	tr *trader.Trader,
	cycleLease *lease.Lease,
	m *metrics.Metrics,
	lookback time.Duration,
	topic string,
	interval time.Duration,
) *Analyzer {
	return &Analyzer{
		logger:        logger.Named("analyzer"),
		prices:        prices,
		signals:       signals,
		notifications: notifications,
		settings:      settings,
		dispatcher:    dispatcher,
		trader:        tr,
		cycleLease:    cycleLease,
		metrics:       m,
		lookback:      lookback,
		topic:         topic,
		interval:      interval,
	}
}

// Run executes cycles on a fixed interval until the context is cancelled.
func (a *Analyzer) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("Starting analysis loop", zap.Duration("interval", a.interval))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopping analysis loop")
			return
		case <-ticker.C:
			if _, err := a.RunCycle(ctx); err != nil {
				a.logger.Error("Analysis cycle failed", zap.Error(err))
			}
		}
	}
}

// RunCycle performs a single analysis cycle. Store failures abort the cycle;
// trade failures are contained inside the trader and notification failures
// are logged and ignored. A nil result with nil error means the cycle was
// skipped because another cycle holds the lease.
func (a *Analyzer) RunCycle(ctx context.Context) (*CycleResult, error) {
	cycleID := uuid.NewString()
	l := a.logger.With(zap.String("cycle_id", cycleID))

	if a.cycleLease != nil {
		acquired, err := a.cycleLease.Acquire(ctx, cycleID)
		if err != nil {
			// Best-effort guard: a broken lease must not stop analysis.
			l.Warn("Cycle lease unavailable, proceeding without it", zap.Error(err))
		} else if !acquired {
			l.Warn("Another cycle holds the lease, skipping")
			return nil, nil
		} else {
			defer a.cycleLease.Release(ctx, cycleID)
		}
	}

	a.metrics.IncCycle()

	settings, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	now := time.Now().UTC()
	points, err := a.prices.Range(now.Add(-a.lookback), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	sig := signal.Classify(prices, signal.Thresholds{
		ShortPeriod:   settings.ShortMAPeriod,
		LongPeriod:    settings.LongMAPeriod,
		BuyThreshold:  settings.BuyThreshold,
		SellThreshold: settings.SellThreshold,
		RSIPeriod:     settings.RSIPeriod,
		RSIOverbought: settings.RSIOverbought,
		RSIOversold:   settings.RSIOversold,
	}, now)

	// The last-signal snapshot must be taken before the new signal is
	// persisted, or the cycle would compare against its own write.
	last, err := a.signals.FindLatest()
	if err != nil {
		return nil, fmt.Errorf("failed to read last signal: %w", err)
	}

	signalID, err := a.signals.Append(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to persist signal: %w", err)
	}
	sig.ID = signalID

	transition := signal.IsTransition(last, sig)
	a.metrics.IncSignal(sig.Type)

	result := &CycleResult{
		CycleID:    cycleID,
		Signal:     sig,
		SignalID:   signalID,
		Transition: transition,
	}

	l.Info("Signal classified",
		zap.String("type", sig.Type),
		zap.Float64("price", sig.Price),
		zap.Float64("confidence", sig.Confidence),
		zap.Bool("transition", transition),
	)

	if !transition {
		return result, nil
	}
	a.metrics.IncTransition()

	if settings.NotificationsEnabled {
		result.NotificationSent = a.notify(ctx, sig, signalID)
	}

	tradeResult, err := a.trader.Execute(ctx, sig, signalID, settings)
	if err != nil {
		return nil, err
	}
	result.TradeExecuted = tradeResult.Executed
	if settings.TradingEnabled {
		if tradeResult.Executed {
			a.metrics.IncTradeExecuted()
		} else {
			a.metrics.IncTradeFailed()
		}
	}

	return result, nil
}

// notify dispatches the transition notification and records it. Delivery is
// best-effort: any failure is logged and the cycle continues.
func (a *Analyzer) notify(ctx context.Context, sig models.Signal, signalID uint) bool {
	title := fmt.Sprintf("%s Signal Detected!", sig.Type)
	body := fmt.Sprintf("BTC at $%.2f - Confidence %.0f%%", sig.Price, sig.Confidence)
	data := map[string]string{
		"signal_id":   strconv.FormatUint(uint64(signalID), 10),
		"signal_type": sig.Type,
		"price":       strconv.FormatFloat(sig.Price, 'f', -1, 64),
		"confidence":  strconv.FormatFloat(sig.Confidence, 'f', -1, 64),
	}

	messageID, err := a.dispatcher.Send(ctx, a.topic, title, body, data)
	if err != nil {
		a.logger.Warn("Notification dispatch failed", zap.Uint("signal_id", signalID), zap.Error(err))
		return false
	}
	a.metrics.IncNotification()

	record := &models.Notification{
		Timestamp:  time.Now().UTC(),
		SignalID:   signalID,
		SignalType: sig.Type,
		Title:      title,
		Message:    body,
		Price:      sig.Price,
		MessageID:  messageID,
	}
	if err := a.notifications.Append(record); err != nil {
		a.logger.Error("Failed to store notification record", zap.Error(err))
	}

	return true
}
