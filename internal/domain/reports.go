package domain

// ReportSummary is returned by GET /api/reports/summary.
type ReportSummary struct {
	Invoices  InvoiceReport `json:"invoices"`
	Payments  PaymentReport `json:"payments"`
	Companies CompanyReport `json:"companies"`
	Demo      bool          `json:"demo"`
	Notices   []string      `json:"notices,omitempty"`
}

// InvoiceReport aggregates invoices by status.
type InvoiceReport struct {
	Count    int                      `json:"count"`
	Invoiced float64                  `json:"invoiced"`
	ByStatus map[InvoiceStatus]Bucket `json:"byStatus"`
}

// PaymentReport aggregates payments by status and method.
type PaymentReport struct {
	Count    int                      `json:"count"`
	Received float64                  `json:"received"`
	ByStatus map[PaymentStatus]Bucket `json:"byStatus"`
	ByMethod map[PaymentMethod]Bucket `json:"byMethod"`
}

// CompanyReport counts tenants.
type CompanyReport struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Bucket is a count plus amount pair.
type Bucket struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}
