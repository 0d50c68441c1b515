// Package indicator computes the technical indicators used by the signal
// classifier: simple moving averages and a windowed RSI approximation.
package indicator

import "errors"

// ErrInsufficientData is returned when fewer samples exist than the indicator
// period requires. Callers must treat it distinctly from a valid value of zero.
var ErrInsufficientData = errors.New("insufficient data")

// MovingAverage returns the arithmetic mean of the last period samples.
func MovingAverage(prices []float64, period int) (float64, error) {
	if period <= 0 || len(prices) < period {
		return 0, ErrInsufficientData
	}

	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), nil
}

// RSI computes a simplified, non-smoothed RSI over the price sequence.
//
// Per-step gains and losses are derived over the whole available history, then
// only the last period gains and last period losses are averaged. This is a
// windowed approximation of the classic oscillator, recomputed from scratch on
// every call with no carried state.
//
// Returns a neutral 50 when fewer than period+1 samples exist, and 100 when
// the windowed average loss is exactly zero.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	var avgGain, avgLoss float64
	for _, g := range gains[len(gains)-period:] {
		avgGain += g
	}
	for _, l := range losses[len(losses)-period:] {
		avgLoss += l
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
