// Package trader executes trades for signal transitions. Every attempt ends
// in exactly one audit record: a TradeRecord on success or a FailedTradeRecord
// on failure. Failures are contained here and never abort the analysis cycle.
package trader

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bitcoin-watcher-go/internal/binance"
	"bitcoin-watcher-go/internal/models"
	"bitcoin-watcher-go/internal/secrets"
	"bitcoin-watcher-go/internal/store"
	"go.uber.org/zap"
)

// Expected business outcomes, recorded but not treated as faults.
var (
	ErrInsufficientBalance = errors.New("insufficient quote balance")
	ErrNoAssetToSell       = errors.New("no base asset available to sell")
)

// ErrExchangeUnreachable marks a failed connectivity probe. The attempt is
// aborted without retry; the next scheduled cycle retries naturally.
var ErrExchangeUnreachable = errors.New("exchange connectivity check failed")

// ClientFactory constructs an exchange client bound to one environment.
// A fresh client is built per execution so the sandbox/live choice always
// follows the current settings.
type ClientFactory func(creds secrets.ExchangeCredentials, sandbox bool) binance.Client

// Trader orchestrates trade execution for signal transitions.
type Trader struct {
	logger     *zap.Logger
	secrets    secrets.Store
	trades     *store.TradeStore
	failures   *store.FailedTradeStore
	newClient  ClientFactory
	symbol     string
	baseAsset  string
	quoteAsset string
}

// New creates a Trader for a single market.
func New(
	logger *zap.Logger,
	secretStore secrets.Store,
	trades *store.TradeStore,
	failures *store.FailedTradeStore,
	newClient ClientFactory,
	symbol, baseAsset, quoteAsset string,
) *Trader {
	return &Trader{
		logger:     logger.Named("trader"),
		secrets:    secretStore,
		trades:     trades,
		failures:   failures,
		newClient:  newClient,
		symbol:     symbol,
		baseAsset:  baseAsset,
		quoteAsset: quoteAsset,
	}
}

// Result describes the outcome of one execution attempt.
type Result struct {
	Executed bool
	Reason   string
	Record   *models.TradeRecord
}

// Execute attempts to trade on a signal transition. It returns an error only
// when an audit record could not be persisted; every trade failure is
// converted into a FailedTradeRecord and a non-executed Result.
func (t *Trader) Execute(ctx context.Context, sig models.Signal, signalID uint, settings store.Settings) (*Result, error) {
	if !settings.TradingEnabled {
		return &Result{Executed: false, Reason: "trading disabled"}, nil
	}
	if sig.Type != models.SignalBuy && sig.Type != models.SignalSell {
		return &Result{Executed: false, Reason: "signal type not tradable"}, nil
	}

	sandbox := settings.TradingMode != store.ModeLive
	l := t.logger.With(
		zap.Uint("signal_id", signalID),
		zap.String("signal_type", sig.Type),
		zap.String("symbol", t.symbol),
		zap.Bool("sandbox", sandbox),
	)

	creds, err := t.secrets.ExchangeCredentials(settings.TradingMode)
	if err != nil {
		return t.recordFailure(l, sig, signalID, err)
	}

	client := t.newClient(creds, sandbox)
	if !client.TestConnection(ctx) {
		return t.recordFailure(l, sig, signalID, ErrExchangeUnreachable)
	}

	var order *binance.OrderResponse
	switch sig.Type {
	case models.SignalBuy:
		order, err = t.executeBuy(ctx, client, settings)
	case models.SignalSell:
		order, err = t.executeSell(ctx, client, settings)
	}
	if err != nil {
		return t.recordFailure(l, sig, signalID, err)
	}

	executedQty, _ := strconv.ParseFloat(order.ExecutedQty, 64)
	record := &models.TradeRecord{
		SignalID:        signalID,
		OrderID:         order.OrderID,
		Symbol:          t.symbol,
		Side:            sig.Type,
		Status:          order.Status,
		ExecutedQty:     executedQty,
		AveragePrice:    order.AverageFillPrice(),
		Fills:           len(order.Fills),
		CommissionTotal: order.TotalCommission(),
		Sandbox:         sandbox,
	}
	if err := t.trades.Append(record); err != nil {
		return nil, fmt.Errorf("failed to persist trade record: %w", err)
	}

	l.Info("Trade executed",
		zap.Int64("order_id", record.OrderID),
		zap.Float64("executed_qty", record.ExecutedQty),
		zap.Float64("average_price", record.AveragePrice),
		zap.Float64("commission_total", record.CommissionTotal),
	)
	return &Result{Executed: true, Record: record}, nil
}

// executeBuy spends the configured quote amount on the base asset. The quote
// balance is read immediately before sizing; it is never cached across cycles.
func (t *Trader) executeBuy(ctx context.Context, client binance.Client, settings store.Settings) (*binance.OrderResponse, error) {
	balance, err := client.GetBalance(ctx, t.quoteAsset)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", t.quoteAsset, err)
	}
	if balance.Free < settings.TradeAmountQuote {
		return nil, fmt.Errorf("%w: required %.2f %s, available %.2f",
			ErrInsufficientBalance, settings.TradeAmountQuote, t.quoteAsset, balance.Free)
	}

	price, err := client.GetCurrentPrice(ctx, t.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get current price: %w", err)
	}

	rules, err := client.GetLotSize(ctx, t.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get lot-size rules: %w", err)
	}

	quantity, err := binance.NormalizeQuantity(settings.TradeAmountQuote/price, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize buy quantity: %w", err)
	}

	return client.PlaceMarketOrder(ctx, t.symbol, binance.OrderSideBuy, quantity)
}

// executeSell sells the configured percentage of the free base balance.
func (t *Trader) executeSell(ctx context.Context, client binance.Client, settings store.Settings) (*binance.OrderResponse, error) {
	balance, err := client.GetBalance(ctx, t.baseAsset)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", t.baseAsset, err)
	}
	if balance.Free <= 0 {
		return nil, fmt.Errorf("%w: %s balance is zero", ErrNoAssetToSell, t.baseAsset)
	}

	rules, err := client.GetLotSize(ctx, t.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get lot-size rules: %w", err)
	}

	raw := balance.Free * (settings.SellPercentage / 100)
	quantity, err := binance.NormalizeQuantity(raw, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize sell quantity: %w", err)
	}

	return client.PlaceMarketOrder(ctx, t.symbol, binance.OrderSideSell, quantity)
}

// recordFailure persists the failed attempt and reports a non-executed result.
// Only a store write failure propagates.
func (t *Trader) recordFailure(l *zap.Logger, sig models.Signal, signalID uint, cause error) (*Result, error) {
	if binance.IsAuthError(cause) {
		l.Error("Trade failed: exchange rejected credentials", zap.Error(cause))
	} else {
		l.Warn("Trade failed", zap.Error(cause))
	}

	record := &models.FailedTradeRecord{
		SignalID:    signalID,
		SignalType:  sig.Type,
		SignalPrice: sig.Price,
		Error:       cause.Error(),
	}
	if err := t.failures.Append(record); err != nil {
		return nil, fmt.Errorf("failed to persist failed-trade record: %w", err)
	}

	return &Result{Executed: false, Reason: cause.Error()}, nil
}
