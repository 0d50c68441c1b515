package signal

import (
	"testing"
	"time"

	"bitcoin-watcher-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func maOnlyThresholds() Thresholds {
	return Thresholds{
		ShortPeriod:   5,
		LongPeriod:    15,
		BuyThreshold:  0.008,
		SellThreshold: 0.008,
	}
}

func flatPrices(n int, price float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return prices
}

func decliningPrices(n int, start, step float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start - float64(i)*step
	}
	return prices
}

func TestClassify_FlatMarketHolds(t *testing.T) {
	now := time.Now().UTC()

	sig := Classify(flatPrices(30, 100), maOnlyThresholds(), now)

	assert.Equal(t, models.SignalHold, sig.Type)
	assert.Equal(t, 50.0, sig.Confidence)
	assert.Equal(t, 100.0, sig.Price)
	assert.InDelta(t, 100.0, sig.ShortMA, 1e-9)
	assert.InDelta(t, 100.0, sig.LongMA, 1e-9)
	assert.Nil(t, sig.RSI)
}

func TestClassify_DeclineTriggersBuy(t *testing.T) {
	// Sharp downtrend pushes the short MA well below the long MA.
	prices := decliningPrices(20, 100, 1.5)

	sig := Classify(prices, maOnlyThresholds(), time.Now().UTC())

	assert.Equal(t, models.SignalBuy, sig.Type)
	assert.Less(t, sig.ShortMA, sig.LongMA)
	assert.Equal(t, 100.0, sig.Confidence) // divergence far past the threshold
	assert.Equal(t, prices[len(prices)-1], sig.Price)
}

func TestClassify_RallyTriggersSell(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 70 + float64(i)*1.5
	}

	sig := Classify(prices, maOnlyThresholds(), time.Now().UTC())

	assert.Equal(t, models.SignalSell, sig.Type)
	assert.Greater(t, sig.ShortMA, sig.LongMA)
	assert.Equal(t, 100.0, sig.Confidence)
}

func TestClassify_SmallDivergenceHolds(t *testing.T) {
	// ~0.6% divergence stays inside the 0.8% threshold.
	prices := flatPrices(15, 100)
	for i := 10; i < 15; i++ {
		prices[i] = 99.1
	}

	sig := Classify(prices, maOnlyThresholds(), time.Now().UTC())

	assert.Equal(t, models.SignalHold, sig.Type)
	assert.Equal(t, 50.0, sig.Confidence)
}

func TestClassify_InsufficientDataHolds(t *testing.T) {
	sig := Classify(flatPrices(10, 100), maOnlyThresholds(), time.Now().UTC())

	assert.Equal(t, models.SignalHold, sig.Type)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Equal(t, "insufficient data", sig.Reason)
	assert.Equal(t, 100.0, sig.Price) // price is reported even without a verdict
}

func TestClassify_EmptyInput(t *testing.T) {
	sig := Classify(nil, maOnlyThresholds(), time.Now().UTC())

	assert.Equal(t, models.SignalHold, sig.Type)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Equal(t, 0.0, sig.Price)
}

func TestClassify_RSIConfirmation(t *testing.T) {
	thresholds := maOnlyThresholds()
	thresholds.RSIPeriod = 5
	thresholds.RSIOversold = 30
	thresholds.RSIOverbought = 70

	t.Run("BuyConfirmedWhenOversold", func(t *testing.T) {
		// A steady decline produces RSI 0, well under the oversold line.
		prices := decliningPrices(20, 100, 1.5)

		sig := Classify(prices, thresholds, time.Now().UTC())

		assert.Equal(t, models.SignalBuy, sig.Type)
		if assert.NotNil(t, sig.RSI) {
			assert.Less(t, *sig.RSI, thresholds.RSIOversold)
		}
		// RSI path: confidence scales with distance below the oversold line.
		assert.InDelta(t, 100.0, sig.Confidence, 1e-9)
	})

	t.Run("BuyVetoedWhenNotOversold", func(t *testing.T) {
		// Short MA sits below the long MA, but the recent window is all
		// gains, so the RSI reads overbought and vetoes the buy.
		prices := flatPrices(15, 100)
		prices[9] = 80
		prices[10] = 81
		prices[11] = 82
		prices[12] = 83
		prices[13] = 84
		prices[14] = 85

		sig := Classify(prices, thresholds, time.Now().UTC())

		assert.Equal(t, models.SignalHold, sig.Type)
		assert.Equal(t, 50.0, sig.Confidence)
	})
}

func TestIsTransition(t *testing.T) {
	buy := models.Signal{Type: models.SignalBuy}
	sell := models.Signal{Type: models.SignalSell}
	hold := models.Signal{Type: models.SignalHold}

	tests := []struct {
		name string
		last *models.Signal
		next models.Signal
		want bool
	}{
		{"FirstBuyIsTransition", nil, buy, true},
		{"FirstSellIsTransition", nil, sell, true},
		{"FirstHoldIsNot", nil, hold, false},
		{"HoldToBuy", &hold, buy, true},
		{"BuyToSell", &buy, sell, true},
		{"RepeatedBuyIsNot", &buy, buy, false},
		{"RepeatedSellIsNot", &sell, sell, false},
		{"BuyToHoldIsNot", &buy, hold, false},
		{"SellToBuy", &sell, buy, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransition(tc.last, tc.next))
		})
	}
}
