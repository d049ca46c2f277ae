package service

import "math"

// Pricing constants for the storefront. GST applies to the item subtotal;
// orders under the free-shipping threshold pay a flat fee.
const (
	TaxRatePercent        = 18.0
	FreeShippingThreshold = 500.0
	ShippingFlatFee       = 50.0
)

// Round2 rounds half away from zero to two decimals, the convention for
// currency amounts throughout.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GST returns the tax on amount at the given percent rate and the
// tax-inclusive total, both rounded to two decimals.
func GST(amount, rate float64) (tax, total float64) {
	tax = Round2(amount * rate / 100)
	total = Round2(amount + tax)
	return tax, total
}

func TaxAmount(subtotal float64) float64 {
	tax, _ := GST(subtotal, TaxRatePercent)
	return tax
}

func ShippingFee(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return ShippingFlatFee
}

// OrderTotals is the full price breakdown computed at checkout.
type OrderTotals struct {
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
}

func ComputeTotals(subtotal float64) OrderTotals {
	subtotal = Round2(subtotal)
	tax := TaxAmount(subtotal)
	shipping := ShippingFee(subtotal)
	return OrderTotals{
		ItemsPrice:    subtotal,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    Round2(subtotal + tax + shipping),
	}
}
