package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuantity(t *testing.T) {
	btcRules := LotSize{MinQty: "0.00001", MaxQty: "9000.0", StepSize: "0.00001"}

	t.Run("RoundsToStepPrecision", func(t *testing.T) {
		qty, err := NormalizeQuantity(0.123456789, btcRules)

		assert.NoError(t, err)
		assert.Equal(t, 0.12346, qty)
	})

	t.Run("Idempotent", func(t *testing.T) {
		once, err := NormalizeQuantity(0.123456789, btcRules)
		assert.NoError(t, err)

		twice, err := NormalizeQuantity(once, btcRules)
		assert.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("ExactMultipleUnchanged", func(t *testing.T) {
		qty, err := NormalizeQuantity(0.25, btcRules)

		assert.NoError(t, err)
		assert.Equal(t, 0.25, qty)
	})

	t.Run("ClampsToMinQty", func(t *testing.T) {
		rules := LotSize{MinQty: "0.001", MaxQty: "100", StepSize: "0.001"}

		qty, err := NormalizeQuantity(0.0001, rules)

		assert.NoError(t, err)
		assert.Equal(t, 0.001, qty)
	})

	t.Run("ClampsToMaxQty", func(t *testing.T) {
		rules := LotSize{MinQty: "0.001", MaxQty: "9.0", StepSize: "0.001"}

		qty, err := NormalizeQuantity(125.5, rules)

		assert.NoError(t, err)
		assert.Equal(t, 9.0, qty)
	})

	t.Run("NoMaxClampWhenUnset", func(t *testing.T) {
		rules := LotSize{MinQty: "0.001", StepSize: "0.001"}

		qty, err := NormalizeQuantity(125.5, rules)

		assert.NoError(t, err)
		assert.Equal(t, 125.5, qty)
	})

	t.Run("WholeUnitStep", func(t *testing.T) {
		rules := LotSize{MinQty: "1", MaxQty: "10000", StepSize: "1.00"}

		qty, err := NormalizeQuantity(2.7, rules)

		assert.NoError(t, err)
		assert.Equal(t, 3.0, qty)
	})

	t.Run("TrailingZerosIgnoredForPrecision", func(t *testing.T) {
		rules := LotSize{MinQty: "0.01", MaxQty: "1000", StepSize: "0.0100"}

		qty, err := NormalizeQuantity(1.23456, rules)

		assert.NoError(t, err)
		assert.Equal(t, 1.23, qty)
	})

	t.Run("InvalidStepSize", func(t *testing.T) {
		_, err := NormalizeQuantity(1, LotSize{StepSize: "not-a-number"})
		assert.Error(t, err)

		_, err = NormalizeQuantity(1, LotSize{StepSize: "0"})
		assert.Error(t, err)
	})
}

func TestStepPrecision(t *testing.T) {
	assert.Equal(t, 5, stepPrecision("0.00001"))
	assert.Equal(t, 2, stepPrecision("0.0100"))
	assert.Equal(t, 0, stepPrecision("1.00"))
	assert.Equal(t, 0, stepPrecision("1"))
	assert.Equal(t, 1, stepPrecision("0.1"))
}
