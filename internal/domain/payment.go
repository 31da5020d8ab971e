package domain

import "time"

// ============================================================
// Payments (Pagamentos)
// ============================================================

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "Pending"
	PaymentReconciled PaymentStatus = "Reconciled"
	PaymentReversed   PaymentStatus = "Reversed"
)

// PaymentMethod is how a payment was settled.
type PaymentMethod string

const (
	MethodCard       PaymentMethod = "Card"
	MethodPIX        PaymentMethod = "PIX"
	MethodMulticaixa PaymentMethod = "Multicaixa"
	MethodTransfer   PaymentMethod = "Transfer"
	MethodBoleto     PaymentMethod = "Boleto"
)

// Payment is a settlement record, optionally reconciled against an invoice.
// A reconciled payment always carries an InvoiceID.
type Payment struct {
	ID        ID            `json:"id"`
	ClientRef string        `json:"clientRef,omitempty"`
	Reference string        `json:"reference"`
	Customer  string        `json:"customer,omitempty"`
	Company   string        `json:"company,omitempty"`
	Date      time.Time     `json:"date"`
	Method    PaymentMethod `json:"method"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	InvoiceID *ID           `json:"invoiceId"`
	Note      string        `json:"note,omitempty"`
}

// PaymentRequest is the body for POST /api/payments.
type PaymentRequest struct {
	Reference string  `json:"reference" validate:"required"`
	Customer  string  `json:"customer"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Method    string  `json:"method" validate:"required,oneof=Card PIX Multicaixa Transfer Boleto"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Note      string  `json:"note"`
}

// ReconcileRequest is the body for POST /api/payments/{id}/reconcile.
type ReconcileRequest struct {
	InvoiceID ID `json:"invoiceId" validate:"required"`
}
