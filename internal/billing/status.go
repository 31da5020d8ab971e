package billing

import "github.com/facturaja/facturaja-bff/internal/domain"

// invoiceTransitions lists the allowed moves out of each invoice status.
// Paid and Cancelled are terminal.
var invoiceTransitions = map[domain.InvoiceStatus][]domain.InvoiceStatus{
	domain.InvoicePending: {domain.InvoicePaid, domain.InvoiceCancelled},
}

// CanTransition reports whether an invoice may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to domain.InvoiceStatus) bool {
	if from == to {
		return true
	}
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to inv or returns ErrInvalidTransition.
func Transition(inv *domain.Invoice, to domain.InvoiceStatus) error {
	if !to.Valid() {
		return &domain.ErrValidation{Field: "status", Message: "unknown status " + string(to)}
	}
	if !CanTransition(inv.Status, to) {
		return &domain.ErrInvalidTransition{Entity: "invoice " + string(inv.ID), From: string(inv.Status), To: string(to)}
	}
	inv.Status = to
	return nil
}

// Reconcile links a payment to an invoice and marks it reconciled in one step.
// Reversed payments cannot be reconciled.
func Reconcile(p *domain.Payment, invoiceID domain.ID) error {
	if invoiceID == "" {
		return &domain.ErrValidation{Field: "invoiceId", Message: "required"}
	}
	if p.Status == domain.PaymentReversed {
		return &domain.ErrInvalidTransition{Entity: "payment " + string(p.ID), From: string(p.Status), To: string(domain.PaymentReconciled)}
	}
	id := invoiceID
	p.InvoiceID = &id
	p.Status = domain.PaymentReconciled
	return nil
}

// Settle marks the invoice a payment was reconciled against as Paid.
// A Paid invoice is already settled; a Cancelled one can never be.
func Settle(inv *domain.Invoice) error {
	if inv.Status == domain.InvoicePaid {
		return nil
	}
	return Transition(inv, domain.InvoicePaid)
}
