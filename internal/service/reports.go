package service

import (
	"context"
	"time"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/tabular"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reports")

// ReportService builds the Relatórios summary from the invoice, payment and
// company screens.
type ReportService struct {
	screens *Screens
	logger  *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(screens *Screens, logger *zap.Logger) *ReportService {
	return &ReportService{screens: screens, logger: logger}
}

// Summary loads the three collections concurrently and aggregates them.
// from and to bound invoice issue dates and payment dates, inclusive.
func (s *ReportService) Summary(ctx context.Context, sess *domain.Session, from, to *time.Time) (*domain.ReportSummary, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Summary")
	defer span.End()

	var (
		invoices  []domain.Invoice
		payments  []domain.Payment
		companies []domain.Company
		modes     [3]struct {
			demo   bool
			notice string
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, modes[0].demo, modes[0].notice, err = s.screens.Invoices.items(gctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		payments, modes[1].demo, modes[1].notice, err = s.screens.Payments.items(gctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		companies, modes[2].demo, modes[2].notice, err = s.screens.Companies.items(gctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	period := tabular.Criteria{From: from, To: to}
	invoices = tabular.Filter(invoices, s.screens.Invoices.schema, period)
	payments = tabular.Filter(payments, s.screens.Payments.schema, period)

	summary := &domain.ReportSummary{
		Invoices:  summarizeInvoices(invoices),
		Payments:  summarizePayments(payments),
		Companies: summarizeCompanies(companies),
	}
	for _, m := range modes {
		summary.Demo = summary.Demo || m.demo
		if m.notice != "" && !contains(summary.Notices, m.notice) {
			summary.Notices = append(summary.Notices, m.notice)
		}
	}

	s.logger.Debug("report summary built",
		zap.Int("invoices", len(invoices)),
		zap.Int("payments", len(payments)),
		zap.Bool("demo", summary.Demo),
	)
	return summary, nil
}

func summarizeInvoices(items []domain.Invoice) domain.InvoiceReport {
	r := domain.InvoiceReport{Count: len(items), ByStatus: map[domain.InvoiceStatus]domain.Bucket{}}
	for _, inv := range items {
		b := r.ByStatus[inv.Status]
		b.Count++
		b.Amount = billing.Round2(b.Amount + inv.Total)
		r.ByStatus[inv.Status] = b
		if inv.Status != domain.InvoiceCancelled {
			r.Invoiced += inv.Total
		}
	}
	r.Invoiced = billing.Round2(r.Invoiced)
	return r
}

func summarizePayments(items []domain.Payment) domain.PaymentReport {
	r := domain.PaymentReport{
		Count:    len(items),
		ByStatus: map[domain.PaymentStatus]domain.Bucket{},
		ByMethod: map[domain.PaymentMethod]domain.Bucket{},
	}
	for _, p := range items {
		b := r.ByStatus[p.Status]
		b.Count++
		b.Amount = billing.Round2(b.Amount + p.Amount)
		r.ByStatus[p.Status] = b

		m := r.ByMethod[p.Method]
		m.Count++
		m.Amount = billing.Round2(m.Amount + p.Amount)
		r.ByMethod[p.Method] = m

		if p.Status != domain.PaymentReversed {
			r.Received += p.Amount
		}
	}
	r.Received = billing.Round2(r.Received)
	return r
}

func summarizeCompanies(items []domain.Company) domain.CompanyReport {
	var r domain.CompanyReport
	for _, c := range items {
		if c.Status == domain.StatusInactive {
			r.Inactive++
		} else {
			r.Active++
		}
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
