package service

import (
	"context"
	"fmt"
	"time"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var invoiceTracer = otel.Tracer("service/invoices")

// defaultSeries is the document series of a new invoice created without one.
const defaultSeries = "FT"

// InvoiceService handles invoice writes. Totals are always recomputed here;
// totals sent by the browser are ignored.
type InvoiceService struct {
	screen *Screen[domain.Invoice]
	logger *zap.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(screen *Screen[domain.Invoice], logger *zap.Logger) *InvoiceService {
	return &InvoiceService{screen: screen, logger: logger}
}

// Totals previews the totals of a set of line items, rounded to cents.
func (s *InvoiceService) Totals(req *domain.TotalsRequest) domain.Totals {
	t := billing.Compute(billing.Coerce(req.Items))
	return domain.Totals{
		Subtotal: billing.Round2(t.Subtotal),
		Tax:      billing.Round2(t.Tax),
		Total:    billing.Round2(t.Total),
	}
}

// Create registers a Pending invoice. Until the backend assigns an id the
// invoice is known by a provisional client reference.
func (s *InvoiceService) Create(ctx context.Context, sess *domain.Session, req *domain.InvoiceRequest) (*domain.Invoice, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.Create")
	defer span.End()

	inv, err := invoiceFromRequest(req)
	if err != nil {
		return nil, err
	}
	inv.ClientRef = uuid.NewString()
	inv.ID = domain.ID(inv.ClientRef)
	inv.Status = domain.InvoicePending
	if inv.Series == "" {
		inv.Series = defaultSeries
	}
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("%s %d/%s", inv.Series, inv.IssueDate.Year(), inv.ClientRef[:8])
	}
	span.SetAttributes(attribute.String("invoice.client_ref", inv.ClientRef))

	stored, err := s.screen.create(ctx, sess, inv)
	if err != nil {
		return nil, err
	}
	stored.ClientRef = inv.ClientRef

	s.logger.Info("invoice created",
		zap.String("invoice_id", stored.ID.String()),
		zap.String("client_ref", inv.ClientRef),
		zap.Float64("total", stored.Total),
	)
	return &stored, nil
}

// Update replaces the editable fields of a Pending invoice. An empty number
// or series keeps the stored one.
func (s *InvoiceService) Update(ctx context.Context, sess *domain.Session, id string, req *domain.InvoiceRequest) (*domain.Invoice, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("invoice.id", id))

	edit, err := invoiceFromRequest(req)
	if err != nil {
		return nil, err
	}

	updated, err := s.screen.modify(ctx, sess, id, func(inv *domain.Invoice) error {
		if inv.Status != domain.InvoicePending {
			return &domain.ErrConflict{Message: fmt.Sprintf("a fatura %s está %s e não pode ser editada", inv.Number, inv.Status)}
		}
		if edit.Number != "" {
			inv.Number = edit.Number
		}
		if edit.Series != "" {
			inv.Series = edit.Series
		}
		inv.Customer = edit.Customer
		inv.IssueDate = edit.IssueDate
		inv.DueDate = edit.DueDate
		inv.Notes = edit.Notes
		inv.Items = edit.Items
		inv.Totals = edit.Totals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get returns one invoice.
func (s *InvoiceService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Invoice, error) {
	inv, err := s.screen.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Pay moves a Pending invoice to Paid.
func (s *InvoiceService) Pay(ctx context.Context, sess *domain.Session, id string) (*domain.Invoice, error) {
	return s.transition(ctx, sess, id, domain.InvoicePaid)
}

// Cancel moves a Pending invoice to Cancelled.
func (s *InvoiceService) Cancel(ctx context.Context, sess *domain.Session, id string) (*domain.Invoice, error) {
	return s.transition(ctx, sess, id, domain.InvoiceCancelled)
}

func (s *InvoiceService) transition(ctx context.Context, sess *domain.Session, id string, to domain.InvoiceStatus) (*domain.Invoice, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("invoice.id", id),
		attribute.String("invoice.status", string(to)),
	)

	current, err := s.screen.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return &current, nil
	}

	updated, err := s.screen.modify(ctx, sess, id, func(inv *domain.Invoice) error {
		return billing.Transition(inv, to)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	return &updated, nil
}

// invoiceFromRequest parses dates, coerces the line items and derives totals.
func invoiceFromRequest(req *domain.InvoiceRequest) (domain.Invoice, error) {
	issue, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return domain.Invoice{}, &domain.ErrValidation{Field: "issueDate", Message: "formato esperado AAAA-MM-DD"}
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return domain.Invoice{}, &domain.ErrValidation{Field: "dueDate", Message: "formato esperado AAAA-MM-DD"}
	}
	if due.Before(issue) {
		return domain.Invoice{}, &domain.ErrValidation{Field: "dueDate", Message: "não pode ser anterior à data de emissão"}
	}

	items := billing.Coerce(req.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = domain.ID(uuid.NewString())
		}
	}

	return domain.Invoice{
		Number:    req.Number,
		Customer:  req.Customer,
		IssueDate: issue,
		DueDate:   due,
		Series:    req.Series,
		Notes:     req.Notes,
		Items:     items,
		Totals:    billing.Compute(items),
	}, nil
}
