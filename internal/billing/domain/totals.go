package domain

import "math"

// Rates are the percentages a bill is computed with. The GST split is
// CGST+SGST for intrastate service and IGST for interstate.
type Rates struct {
	DiscountPercentage      float64
	ServiceChargePercentage float64
	CGSTPercentage          float64
	SGSTPercentage          float64
	IGSTPercentage          float64
	Interstate              bool
}

// Totals is the full amount breakdown of a bill.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	ServiceCharge  float64
	CGSTAmount     float64
	SGSTAmount     float64
	IGSTAmount     float64
	RoundOff       float64
	GrandTotal     float64
}

// ComputeTotals derives every bill amount from the subtotal:
//
//	discount   = subtotal × discount%
//	taxable    = subtotal − discount
//	service    = taxable × service charge%
//	GST        = (taxable + service) × rate, split CGST/SGST or IGST
//	grand      = taxable + service + GST, rounded to the nearest rupee
//
// RoundOff carries the signed rounding correction. The function is
// pure; calling it twice on the same inputs yields identical totals.
func ComputeTotals(subtotal float64, r Rates) Totals {
	t := Totals{Subtotal: subtotal}
	t.DiscountAmount = subtotal * r.DiscountPercentage / 100
	t.TaxableAmount = subtotal - t.DiscountAmount
	t.ServiceCharge = t.TaxableAmount * r.ServiceChargePercentage / 100

	gstBase := t.TaxableAmount + t.ServiceCharge
	if r.Interstate {
		t.IGSTAmount = gstBase * r.IGSTPercentage / 100
	} else {
		t.CGSTAmount = gstBase * r.CGSTPercentage / 100
		t.SGSTAmount = gstBase * r.SGSTPercentage / 100
	}

	exact := gstBase + t.CGSTAmount + t.SGSTAmount + t.IGSTAmount
	t.GrandTotal = math.Round(exact)
	t.RoundOff = t.GrandTotal - exact
	return t
}
