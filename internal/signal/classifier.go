// Package signal classifies indicator values into trading signals and detects
// transitions between consecutive signals.
package signal

import (
	"time"

	"bitcoin-watcher-go/internal/indicator"
	"bitcoin-watcher-go/internal/models"
)

// Thresholds parameterizes the classifier. RSI filtering is active only when
// RSIPeriod is positive; the MA-only and MA+RSI paths are the same algorithm.
type Thresholds struct {
	ShortPeriod   int
	LongPeriod    int
	BuyThreshold  float64
	SellThreshold float64
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
}

// UseRSI reports whether RSI confirmation is configured.
func (t Thresholds) UseRSI() bool {
	return t.RSIPeriod > 0
}

// Classify turns an ascending price sequence into a Signal.
//
// Convention: short MA below the long MA by more than the buy threshold is a
// BUY (buy the dip); short above long by more than the sell threshold is a
// SELL. With RSI configured, a BUY additionally requires the RSI under the
// oversold threshold and a SELL requires it over the overbought threshold.
func Classify(prices []float64, t Thresholds, now time.Time) models.Signal {
	sig := models.Signal{
		Timestamp: now,
		Type:      models.SignalHold,
	}
	if len(prices) > 0 {
		sig.Price = prices[len(prices)-1]
	}

	shortMA, errShort := indicator.MovingAverage(prices, t.ShortPeriod)
	longMA, errLong := indicator.MovingAverage(prices, t.LongPeriod)
	if errShort != nil || errLong != nil {
		sig.Confidence = 0
		sig.Reason = "insufficient data"
		return sig
	}

	sig.ShortMA = shortMA
	sig.LongMA = longMA

	var rsi float64
	if t.UseRSI() {
		rsi = indicator.RSI(prices, t.RSIPeriod)
		sig.RSI = &rsi
	}

	buyMA := shortMA < longMA*(1-t.BuyThreshold)
	sellMA := shortMA > longMA*(1+t.SellThreshold)

	switch {
	case buyMA && (!t.UseRSI() || rsi < t.RSIOversold):
		sig.Type = models.SignalBuy
		if t.UseRSI() {
			sig.Confidence = capConfidence((t.RSIOversold - rsi) / t.RSIOversold * 100)
		} else {
			sig.Confidence = capConfidence((1 - shortMA/longMA) / t.BuyThreshold * 100)
		}
	case sellMA && (!t.UseRSI() || rsi > t.RSIOverbought):
		sig.Type = models.SignalSell
		if t.UseRSI() {
			sig.Confidence = capConfidence((rsi - t.RSIOverbought) / (100 - t.RSIOverbought) * 100)
		} else {
			sig.Confidence = capConfidence((shortMA/longMA - 1) / t.SellThreshold * 100)
		}
	default:
		sig.Type = models.SignalHold
		sig.Confidence = 50
	}

	return sig
}

func capConfidence(c float64) float64 {
	if c > 100 {
		return 100
	}
	if c < 0 {
		return 0
	}
	return c
}
