package demo_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/demo"
)

var anchor = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func TestAuditLogs_ShapeAndOrder(t *testing.T) {
	logs := demo.New(anchor).AuditLogs()

	require.Len(t, logs, 120)
	assert.Equal(t, domain.ID("log-001"), logs[0].ID)
	assert.True(t, sort.SliceIsSorted(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	}))
}

func TestDataset_Deterministic(t *testing.T) {
	a := demo.New(anchor)
	b := demo.New(anchor)

	assert.Equal(t, a.AuditLogs(), b.AuditLogs())
	assert.Equal(t, a.Invoices(), b.Invoices())
	assert.Equal(t, a.Payments(), b.Payments())
}

func TestInvoices_TotalsAreDerived(t *testing.T) {
	for _, inv := range demo.New(anchor).Invoices() {
		assert.Equal(t, billing.Compute(inv.Items), inv.Totals, inv.ID)
		assert.True(t, inv.Status.Valid())
		assert.NotEmpty(t, inv.Items)
	}
}

func TestPayments_ReconciledCarryInvoice(t *testing.T) {
	for _, p := range demo.New(anchor).Payments() {
		if p.Status == domain.PaymentReconciled {
			require.NotNil(t, p.InvoiceID, p.ID)
		} else {
			assert.Nil(t, p.InvoiceID, p.ID)
		}
	}
}

func TestDirectory(t *testing.T) {
	d := demo.New(anchor)

	assert.Len(t, d.Companies(), 5)
	users := d.Users()
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.Len(t, d.Products(), 8)
}
