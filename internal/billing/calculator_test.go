package billing_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Empty(t *testing.T) {
	got := billing.Compute(nil)
	assert.Equal(t, domain.Totals{}, got)
}

func TestCompute_SingleLine(t *testing.T) {
	got := billing.Compute([]domain.LineItem{{Quantity: 2, UnitPrice: 30, TaxPercent: 0}})
	assert.Equal(t, domain.Totals{Subtotal: 60, Tax: 0, Total: 60}, got)
}

func TestCompute_PayInvoiceScenario(t *testing.T) {
	got := billing.Compute([]domain.LineItem{
		{Quantity: 2, UnitPrice: 30},
		{Quantity: 1, UnitPrice: 60},
	})
	assert.Equal(t, domain.Totals{Subtotal: 120, Tax: 0, Total: 120}, got)
}

func TestCompute_WithTax(t *testing.T) {
	got := billing.Compute([]domain.LineItem{
		{Quantity: 3, UnitPrice: 100, TaxPercent: 14},
		{Quantity: 1, UnitPrice: 50, TaxPercent: 0},
	})
	assert.InDelta(t, 350.0, got.Subtotal, 1e-9)
	assert.InDelta(t, 42.0, got.Tax, 1e-9)
	assert.InDelta(t, 392.0, got.Total, 1e-9)
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		n := rng.Intn(8)
		items := make([]domain.LineItem, n)
		var wantSub, wantTax float64
		for i := range items {
			items[i] = domain.LineItem{
				Quantity:   float64(1 + rng.Intn(20)),
				UnitPrice:  float64(rng.Intn(100000)) / 100,
				TaxPercent: float64(rng.Intn(101)),
			}
			base := items[i].Quantity * items[i].UnitPrice
			wantSub += base
			wantTax += base * items[i].TaxPercent / 100
		}

		got := billing.Compute(items)
		require.Equal(t, got.Subtotal+got.Tax, got.Total, "total must equal subtotal + tax")
		require.Equal(t, wantSub, got.Subtotal)
		require.Equal(t, wantTax, got.Tax)
	}
}

func TestLineTotal(t *testing.T) {
	item := domain.LineItem{Quantity: 2, UnitPrice: 50, TaxPercent: 10}
	assert.InDelta(t, 110.0, billing.LineTotal(item), 1e-9)
}

func TestCoerce(t *testing.T) {
	in := []domain.LineItem{
		{ID: "a", Quantity: math.NaN(), UnitPrice: 10, TaxPercent: 5},
		{ID: "b", Quantity: 1, UnitPrice: math.Inf(1), TaxPercent: 150},
		{ID: "c", Quantity: -3, UnitPrice: -1, TaxPercent: -2},
	}
	out := billing.Coerce(in)

	require.Len(t, out, 3)
	assert.Equal(t, 0.0, out[0].Quantity)
	assert.Equal(t, 10.0, out[0].UnitPrice)
	assert.Equal(t, 0.0, out[1].UnitPrice)
	assert.Equal(t, 0.0, out[1].TaxPercent)
	assert.Equal(t, domain.LineItem{ID: "c"}, out[2])
	assert.True(t, math.IsNaN(in[0].Quantity), "input must not be modified")
	assert.Equal(t, domain.Totals{}, billing.Compute(out))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, billing.Round2(10.125000001))
	assert.Equal(t, 0.0, billing.Round2(0.004))
}
