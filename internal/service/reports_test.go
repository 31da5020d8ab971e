package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

func TestReportSummary_Live(t *testing.T) {
	res := newMockResources()
	res.lists["invoices"] = []domain.Invoice{
		{ID: "1", Status: domain.InvoicePaid, Totals: domain.Totals{Subtotal: 100, Total: 100}},
		{ID: "2", Status: domain.InvoicePending, Totals: domain.Totals{Subtotal: 50, Tax: 7, Total: 57}},
		{ID: "3", Status: domain.InvoiceCancelled, Totals: domain.Totals{Subtotal: 10, Total: 10}},
	}
	res.lists["payments"] = []domain.Payment{
		{ID: "p1", Status: domain.PaymentReconciled, Method: domain.MethodPIX, Amount: 100},
		{ID: "p2", Status: domain.PaymentReversed, Method: domain.MethodCard, Amount: 20},
	}
	res.lists["companies"] = []domain.Company{
		{ID: "c1", Status: domain.StatusActive},
		{ID: "c2", Status: domain.StatusInactive},
	}
	screens, views := newScreens(res)
	defer views.Close()
	svc := service.NewReportService(screens, zap.NewNop())

	got, err := svc.Summary(context.Background(), liveSession(domain.RoleAdmin), nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got.Demo {
		t.Error("expected live summary")
	}
	if got.Invoices.Count != 3 || got.Invoices.Invoiced != 157 {
		t.Errorf("unexpected invoice report %+v", got.Invoices)
	}
	if got.Invoices.ByStatus[domain.InvoiceCancelled].Count != 1 {
		t.Errorf("expected one cancelled invoice, got %+v", got.Invoices.ByStatus)
	}
	if got.Payments.Received != 100 || got.Payments.ByMethod[domain.MethodCard].Amount != 20 {
		t.Errorf("unexpected payment report %+v", got.Payments)
	}
	if got.Companies.Active != 1 || got.Companies.Inactive != 1 {
		t.Errorf("unexpected company report %+v", got.Companies)
	}
}

func TestReportSummary_FallbackNotice(t *testing.T) {
	res := newMockResources()
	res.listErr = errors.New("backend down")
	screens, views := newScreens(res)
	defer views.Close()
	svc := service.NewReportService(screens, zap.NewNop())

	got, err := svc.Summary(context.Background(), liveSession(domain.RoleAdmin), nil, nil)
	if err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
	if !got.Demo || len(got.Notices) != 1 {
		t.Errorf("expected demo summary with a single notice, got demo=%v notices=%v", got.Demo, got.Notices)
	}
}
