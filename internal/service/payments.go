package service

import (
	"context"
	"errors"
	"time"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var paymentTracer = otel.Tracer("service/payments")

// PaymentService registers, reconciles and deletes payments. Reconciling
// settles the linked invoice through the invoices screen.
type PaymentService struct {
	screen   *Screen[domain.Payment]
	invoices *Screen[domain.Invoice]
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(screen *Screen[domain.Payment], invoices *Screen[domain.Invoice], logger *zap.Logger) *PaymentService {
	return &PaymentService{screen: screen, invoices: invoices, logger: logger}
}

// Register records a new Pending payment.
func (s *PaymentService) Register(ctx context.Context, sess *domain.Session, req *domain.PaymentRequest) (*domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Register")
	defer span.End()

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "formato esperado AAAA-MM-DD"}
	}

	ref := uuid.NewString()
	p := domain.Payment{
		ID:        domain.ID(ref),
		ClientRef: ref,
		Reference: req.Reference,
		Customer:  req.Customer,
		Date:      date,
		Method:    domain.PaymentMethod(req.Method),
		Amount:    billing.Round2(req.Amount),
		Status:    domain.PaymentPending,
		Note:      req.Note,
	}

	stored, err := s.screen.create(ctx, sess, p)
	if err != nil {
		return nil, err
	}
	stored.ClientRef = ref
	return &stored, nil
}

// Reconcile links a payment to an invoice and settles both: the payment
// becomes Reconciled with the invoice id and a Pending invoice becomes Paid.
// Unknown and Cancelled invoices are rejected before anything is written.
func (s *PaymentService) Reconcile(ctx context.Context, sess *domain.Session, id string, req *domain.ReconcileRequest) (*domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Reconcile")
	defer span.End()
	invoiceID := req.InvoiceID.String()
	span.SetAttributes(
		attribute.String("payment.id", id),
		attribute.String("invoice.id", invoiceID),
	)

	inv, err := s.invoices.Get(ctx, sess, invoiceID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrValidation{Field: "invoiceId", Message: "fatura " + invoiceID + " não existe"}
		}
		return nil, err
	}
	if err := billing.Settle(&inv); err != nil {
		return nil, err
	}

	payment, err := s.screen.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := billing.Reconcile(&payment, req.InvoiceID); err != nil {
		return nil, err
	}

	updated, err := s.screen.modify(ctx, sess, id, func(p *domain.Payment) error {
		return billing.Reconcile(p, req.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.invoices.modify(ctx, sess, invoiceID, billing.Settle); err != nil {
		s.logger.Error("payment reconciled but invoice not settled",
			zap.String("payment_id", id),
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("payment reconciled",
		zap.String("payment_id", id),
		zap.String("invoice_id", invoiceID),
	)
	return &updated, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", id))

	return s.screen.remove(ctx, sess, id)
}
