// Package pricefeed polls the current asset price and appends it to the
// price history.
package pricefeed

import (
	"context"
	"fmt"
	"time"

	"bitcoin-watcher-go/internal/metrics"
	"bitcoin-watcher-go/internal/store"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// Feed polls CoinGecko's simple-price endpoint on a fixed interval.
type Feed struct {
	client     *resty.Client
	prices     *store.PriceStore
	logger     *zap.Logger
	metrics    *metrics.Metrics
	assetID    string
	vsCurrency string
	interval   time.Duration
}

// New creates a price feed.
func New(prices *store.PriceStore, m *metrics.Metrics, assetID, vsCurrency string, interval time.Duration, logger *zap.Logger) *Feed {
	client := resty.New().
		SetBaseURL(coinGeckoBaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Feed{
		client:     client,
		prices:     prices,
		logger:     logger.Named("pricefeed"),
		metrics:    m,
		assetID:    assetID,
		vsCurrency: vsCurrency,
		interval:   interval,
	}
}

// FetchPrice fetches the current price from CoinGecko.
func (f *Feed) FetchPrice(ctx context.Context) (float64, error) {
	// Response shape: {"bitcoin": {"usd": 61234.5}}
	var result map[string]map[string]float64

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("ids", f.assetID).
		SetQueryParam("vs_currencies", f.vsCurrency).
		SetResult(&result).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("price fetch failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("price fetch rejected with status %s", resp.Status())
	}

	price, ok := result[f.assetID][f.vsCurrency]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("price missing for %s/%s", f.assetID, f.vsCurrency)
	}
	return price, nil
}

// Poll fetches the current price and appends it to the price history.
func (f *Feed) Poll(ctx context.Context) error {
	price, err := f.FetchPrice(ctx)
	if err != nil {
		return err
	}

	if err := f.prices.Append(price, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store price: %w", err)
	}
	f.metrics.IncPriceSample()

	f.logger.Debug("Stored price sample", zap.Float64("price", price))
	return nil
}

// Run polls on a fixed interval until the context is cancelled.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("Starting price feed", zap.Duration("interval", f.interval))

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Stopping price feed")
			return
		case <-ticker.C:
			if err := f.Poll(ctx); err != nil {
				f.logger.Error("Price poll failed", zap.Error(err))
			}
		}
	}
}
