package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultRates() Rates {
	return Rates{
		ServiceChargePercentage: 10,
		CGSTPercentage:          2.5,
		SGSTPercentage:          2.5,
		IGSTPercentage:          5,
	}
}

func TestComputeTotals_StandardIntrastate(t *testing.T) {
	totals := ComputeTotals(250, defaultRates())

	assert.InDelta(t, 250.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 0.0, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 250.0, totals.TaxableAmount, 0.001)
	assert.InDelta(t, 25.0, totals.ServiceCharge, 0.001)
	assert.InDelta(t, 6.875, totals.CGSTAmount, 0.001)
	assert.InDelta(t, 6.875, totals.SGSTAmount, 0.001)
	assert.InDelta(t, 0.0, totals.IGSTAmount, 0.001)
	assert.InDelta(t, 289.0, totals.GrandTotal, 0.001)
	assert.InDelta(t, 0.25, totals.RoundOff, 0.001)
}

func TestComputeTotals_DiscountBeforeServiceCharge(t *testing.T) {
	rates := defaultRates()
	rates.DiscountPercentage = 20

	totals := ComputeTotals(250, rates)

	assert.InDelta(t, 50.0, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 200.0, totals.TaxableAmount, 0.001)
	// Service charge applies to the discounted amount, not the subtotal.
	assert.InDelta(t, 20.0, totals.ServiceCharge, 0.001)
	assert.InDelta(t, 5.5, totals.CGSTAmount, 0.001)
	assert.InDelta(t, 5.5, totals.SGSTAmount, 0.001)
	assert.InDelta(t, 231.0, totals.GrandTotal, 0.001)
}

func TestComputeTotals_Interstate(t *testing.T) {
	rates := defaultRates()
	rates.Interstate = true

	totals := ComputeTotals(250, rates)

	assert.InDelta(t, 0.0, totals.CGSTAmount, 0.001)
	assert.InDelta(t, 0.0, totals.SGSTAmount, 0.001)
	assert.InDelta(t, 13.75, totals.IGSTAmount, 0.001)
	// Same effective rate as CGST+SGST, so the same grand total.
	assert.InDelta(t, 289.0, totals.GrandTotal, 0.001)
}

func TestComputeTotals_RoundsDown(t *testing.T) {
	// 100 → service 10 → base 110 → gst 5.5 → 115.5, rounds to 116
	// with round-half-away-from-zero.
	totals := ComputeTotals(100, defaultRates())
	assert.InDelta(t, 116.0, totals.GrandTotal, 0.001)
	assert.InDelta(t, 0.5, totals.RoundOff, 0.001)
}

func TestComputeTotals_ZeroSubtotal(t *testing.T) {
	totals := ComputeTotals(0, defaultRates())
	assert.Zero(t, totals.GrandTotal)
	assert.Zero(t, totals.RoundOff)
}

func TestComputeTotals_Deterministic(t *testing.T) {
	first := ComputeTotals(1234.56, defaultRates())
	second := ComputeTotals(1234.56, defaultRates())
	assert.Equal(t, first, second)
}
