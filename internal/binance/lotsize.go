package binance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LotSize is the exchange's quantity-granularity filter for one market.
// Values are kept in their wire (string) form so the step size's own decimal
// representation can drive the rounding precision.
type LotSize struct {
	MinQty   string
	MaxQty   string
	StepSize string
}

// NormalizeQuantity rounds raw to the nearest multiple of the step size,
// clamps it into [minQty, maxQty], then rounds to the decimal precision
// implied by the step size's fractional digits (trailing zeros trimmed).
//
// The precision is derived from the step size's textual representation, not
// from the input: deriving it from the raw quantity produces values the
// exchange rejects. The operation is idempotent.
func NormalizeQuantity(raw float64, rules LotSize) (float64, error) {
	step, err := decimal.NewFromString(rules.StepSize)
	if err != nil || step.Sign() <= 0 {
		return 0, fmt.Errorf("invalid step size %q", rules.StepSize)
	}

	qty := decimal.NewFromFloat(raw)
	qty = qty.Div(step).Round(0).Mul(step)

	if rules.MinQty != "" {
		minQty, err := decimal.NewFromString(rules.MinQty)
		if err != nil {
			return 0, fmt.Errorf("invalid min quantity %q", rules.MinQty)
		}
		if qty.LessThan(minQty) {
			qty = minQty
		}
	}
	if rules.MaxQty != "" {
		maxQty, err := decimal.NewFromString(rules.MaxQty)
		if err != nil {
			return 0, fmt.Errorf("invalid max quantity %q", rules.MaxQty)
		}
		if maxQty.Sign() > 0 && qty.GreaterThan(maxQty) {
			qty = maxQty
		}
	}

	qty = qty.Round(int32(stepPrecision(rules.StepSize)))

	normalized, _ := qty.Float64()
	return normalized, nil
}

// stepPrecision returns the number of significant fractional digits in a step
// size string: "0.00001" -> 5, "0.0100" -> 2, "1.00" -> 0, "1" -> 0.
func stepPrecision(step string) int {
	dot := strings.Index(step, ".")
	if dot < 0 {
		return 0
	}
	trimmed := strings.TrimRight(step, "0")
	if len(trimmed) <= dot+1 {
		return 0
	}
	return len(trimmed) - dot - 1
}
