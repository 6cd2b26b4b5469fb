package cart

import (
	"citystore-api-io/api/pkg/models"

	"github.com/shopspring/decimal"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(50)
	ShippingFee           = decimal.RequireFromString("5.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

// Summary is the order economics for a cart subtotal, in cents precision.
type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Subtotal is Σ price × quantity rounded to cents.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// Summarize applies free shipping at or above the threshold and 8% tax.
func Summarize(subtotal decimal.Decimal) Summary {
	subtotal = subtotal.Round(2)

	shipping := ShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	return Summary{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// SummarizeItems is Summarize(Subtotal(items)).
func SummarizeItems(items []models.CartItem) Summary {
	return Summarize(Subtotal(items))
}
