package domain

import "time"

// ============================================================
// Invoices (Faturas)
// ============================================================

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "Pending"
	InvoicePaid      InvoiceStatus = "Paid"
	InvoiceCancelled InvoiceStatus = "Cancelled"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

// LineItem is one billable line on an invoice. Its total is always derived.
type LineItem struct {
	ID          ID      `json:"id"`
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	TaxPercent  float64 `json:"taxPercent" validate:"gte=0,lte=100"`
}

// Totals is the derived money summary of a list of line items.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Invoice is a billing document owned by a tenant and addressed to a customer.
type Invoice struct {
	ID        ID            `json:"id"`
	ClientRef string        `json:"clientRef,omitempty"` // provisional id used until the backend assigns one
	Number    string        `json:"number"`
	Customer  string        `json:"customer"`
	Company   string        `json:"company,omitempty"`
	IssueDate time.Time     `json:"issueDate"`
	DueDate   time.Time     `json:"dueDate"`
	Series    string        `json:"series"`
	Status    InvoiceStatus `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	Items     []LineItem    `json:"items"`
	Totals
}

// InvoiceRequest is the body for POST /api/invoices and PUT /api/invoices/{id}.
type InvoiceRequest struct {
	Number    string     `json:"number"`
	Customer  string     `json:"customer" validate:"required"`
	IssueDate string     `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate   string     `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Series    string     `json:"series"`
	Notes     string     `json:"notes"`
	Items     []LineItem `json:"items" validate:"required,min=1,dive"`
}

// TotalsRequest is the body for POST /api/invoices/totals.
type TotalsRequest struct {
	Items []LineItem `json:"items"`
}
