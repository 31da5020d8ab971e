// Package billing holds the invoice money rules: line totals, invoice totals
// and the status lifecycle.
package billing

import (
	"math"

	"github.com/facturaja/facturaja-bff/internal/domain"
)

// LineTotal returns quantity * unitPrice * (1 + taxPercent/100).
func LineTotal(item domain.LineItem) float64 {
	return item.Quantity * item.UnitPrice * (1 + item.TaxPercent/100)
}

// Compute sums the subtotal and tax of items. Total is always Subtotal + Tax.
func Compute(items []domain.LineItem) domain.Totals {
	var t domain.Totals
	for _, it := range items {
		base := it.Quantity * it.UnitPrice
		t.Subtotal += base
		t.Tax += base * it.TaxPercent / 100
	}
	t.Total = t.Subtotal + t.Tax
	return t
}

// Coerce returns a copy of items with malformed numbers replaced by zero:
// non-finite values, negative quantities or prices, and tax outside 0..100.
func Coerce(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, it := range items {
		it.Quantity = clean(it.Quantity)
		it.UnitPrice = clean(it.UnitPrice)
		it.TaxPercent = clean(it.TaxPercent)
		if it.TaxPercent > 100 {
			it.TaxPercent = 0
		}
		out[i] = it
	}
	return out
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Round2 rounds an amount to cents for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
