// Package demo generates the placeholder collections shown when no backend
// session exists or the backend list call fails. Output depends only on the
// anchor time, so two calls with the same anchor yield identical data.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"
)

const (
	seed        = 20240115
	auditCount  = 120
	invoiceRows = 36
	paymentRows = 28
)

var (
	companies = []string{"Kianda Comércio", "Luanda Tech", "Mar Azul Pescas", "Benguela Serviços", "Huambo Agro"}
	customers = []string{"Maria Santos", "João Ferreira", "Ana Domingos", "Paulo Neto", "Rosa Tavares", "Carlos Bento"}
	actors    = []string{"admin@facturaja.ao", "ana@kianda.ao", "joao@luandatech.ao", "rosa@marazul.ao", "sistema"}
	series    = []string{"FT", "FR", "NC"}
	methods   = []domain.PaymentMethod{domain.MethodCard, domain.MethodPIX, domain.MethodMulticaixa, domain.MethodTransfer, domain.MethodBoleto}
	catalogue = []struct {
		name, category string
		price          float64
	}{
		{"Resma papel A4", "Escritório", 4500},
		{"Toner HP 85A", "Escritório", 38000},
		{"Licença FacturaJá Pro", "Software", 25000},
		{"Consultoria (hora)", "Serviços", 15000},
		{"Router Wi-Fi", "Hardware", 52000},
		{"Cadeira ergonómica", "Mobiliário", 89000},
		{"Formação fiscal", "Serviços", 120000},
		{"Disco SSD 1TB", "Hardware", 61000},
	}
)

// Dataset builds placeholder collections anchored at a point in time.
type Dataset struct {
	anchor time.Time
}

// New returns a dataset whose newest records are dated at anchor.
func New(anchor time.Time) *Dataset {
	return &Dataset{anchor: anchor.Truncate(time.Minute)}
}

func (d *Dataset) rng(stream int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + stream))
}

// AuditLogs returns 120 entries in descending timestamp order.
func (d *Dataset) AuditLogs() []domain.AuditLogEntry {
	r := d.rng(1)
	actions := []domain.AuditAction{
		domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete,
		domain.ActionLogin, domain.ActionLogout, domain.ActionOther,
	}
	objects := []string{"invoice", "payment", "company", "user", "product"}

	out := make([]domain.AuditLogEntry, auditCount)
	for i := range out {
		action := actions[r.Intn(len(actions))]
		object := objects[r.Intn(len(objects))]
		objectID := 1000 + r.Intn(9000)
		out[i] = domain.AuditLogEntry{
			ID:          domain.ID(fmt.Sprintf("log-%03d", i+1)),
			Timestamp:   d.anchor.Add(-time.Duration(i) * 47 * time.Minute),
			Actor:       actors[r.Intn(len(actors))],
			Company:     companies[r.Intn(len(companies))],
			Action:      action,
			Object:      fmt.Sprintf("%s:%d", object, objectID),
			Description: describe(action, object, objectID),
			IP:          fmt.Sprintf("10.0.%d.%d", r.Intn(256), 1+r.Intn(254)),
			Meta:        map[string]any{"userAgent": "Mozilla/5.0"},
		}
	}
	return out
}

func describe(action domain.AuditAction, object string, id int) string {
	switch action {
	case domain.ActionCreate:
		return fmt.Sprintf("Criou %s %d", object, id)
	case domain.ActionUpdate:
		return fmt.Sprintf("Actualizou %s %d", object, id)
	case domain.ActionDelete:
		return fmt.Sprintf("Eliminou %s %d", object, id)
	case domain.ActionLogin:
		return "Sessão iniciada"
	case domain.ActionLogout:
		return "Sessão terminada"
	default:
		return fmt.Sprintf("Consultou %s %d", object, id)
	}
}

// Invoices returns invoices with line items and derived totals, newest first.
func (d *Dataset) Invoices() []domain.Invoice {
	r := d.rng(2)
	statuses := []domain.InvoiceStatus{domain.InvoicePending, domain.InvoicePending, domain.InvoicePaid, domain.InvoiceCancelled}

	out := make([]domain.Invoice, invoiceRows)
	for i := range out {
		issue := d.anchor.AddDate(0, 0, -3*i).Truncate(24 * time.Hour)
		s := series[r.Intn(len(series))]

		items := make([]domain.LineItem, 1+r.Intn(3))
		for j := range items {
			p := catalogue[r.Intn(len(catalogue))]
			items[j] = domain.LineItem{
				ID:          domain.ID(fmt.Sprintf("li-%d-%d", i+1, j+1)),
				Description: p.name,
				Quantity:    float64(1 + r.Intn(5)),
				UnitPrice:   p.price,
				TaxPercent:  []float64{0, 7, 14}[r.Intn(3)],
			}
		}

		out[i] = domain.Invoice{
			ID:        domain.ID(fmt.Sprintf("inv-%03d", i+1)),
			Number:    fmt.Sprintf("%s %d/%d", s, issue.Year(), invoiceRows-i),
			Customer:  customers[r.Intn(len(customers))],
			Company:   companies[r.Intn(len(companies))],
			IssueDate: issue,
			DueDate:   issue.AddDate(0, 0, 30),
			Series:    s,
			Status:    statuses[r.Intn(len(statuses))],
			Items:     items,
			Totals:    billing.Compute(items),
		}
	}
	return out
}

// Payments returns payments newest first. Reconciled ones point at demo invoices.
func (d *Dataset) Payments() []domain.Payment {
	r := d.rng(3)

	out := make([]domain.Payment, paymentRows)
	for i := range out {
		p := domain.Payment{
			ID:        domain.ID(fmt.Sprintf("pay-%03d", i+1)),
			Reference: fmt.Sprintf("REF-%06d", 100000+r.Intn(900000)),
			Customer:  customers[r.Intn(len(customers))],
			Company:   companies[r.Intn(len(companies))],
			Date:      d.anchor.AddDate(0, 0, -2*i).Truncate(24 * time.Hour),
			Method:    methods[r.Intn(len(methods))],
			Amount:    billing.Round2(float64(5000+r.Intn(400000)) + float64(r.Intn(100))/100),
			Status:    domain.PaymentPending,
		}
		switch r.Intn(4) {
		case 0, 1:
			inv := domain.ID(fmt.Sprintf("inv-%03d", 1+r.Intn(invoiceRows)))
			p.Status = domain.PaymentReconciled
			p.InvoiceID = &inv
		case 2:
			if r.Intn(3) == 0 {
				p.Status = domain.PaymentReversed
			}
		}
		out[i] = p
	}
	return out
}

// Companies returns the demo tenants.
func (d *Dataset) Companies() []domain.Company {
	plans := []string{"Básico", "Pro", "Empresa"}
	out := make([]domain.Company, len(companies))
	for i, name := range companies {
		status := domain.StatusActive
		if i == len(companies)-1 {
			status = domain.StatusInactive
		}
		out[i] = domain.Company{
			ID:        domain.ID(fmt.Sprintf("cmp-%02d", i+1)),
			Name:      name,
			NIF:       fmt.Sprintf("54170%05d", 1234+i*811),
			Email:     fmt.Sprintf("geral@empresa%d.ao", i+1),
			Phone:     fmt.Sprintf("+244 92%d %03d %03d", i, 100+i*7, 200+i*13),
			Plan:      plans[i%len(plans)],
			Status:    status,
			CreatedAt: d.anchor.AddDate(0, -6*(i+1), 0),
		}
	}
	return out
}

// Users returns one admin plus company and customer users.
func (d *Dataset) Users() []domain.User {
	r := d.rng(4)
	names := []string{"Admin FacturaJá", "Ana Domingos", "João Ferreira", "Rosa Tavares", "Paulo Neto", "Maria Santos", "Carlos Bento", "Inês Lopes", "Tomás Sebastião", "Luísa Kiala"}

	out := make([]domain.User, len(names))
	for i, name := range names {
		role := domain.RoleCustomer
		switch {
		case i == 0:
			role = domain.RoleAdmin
		case i%3 == 1:
			role = domain.RoleCompany
		}
		status := domain.StatusActive
		if r.Intn(5) == 0 {
			status = domain.StatusInactive
		}
		out[i] = domain.User{
			ID:          domain.ID(fmt.Sprintf("usr-%02d", i+1)),
			Name:        name,
			Email:       fmt.Sprintf("user%d@facturaja.ao", i+1),
			Role:        role,
			CompanyName: companies[i%len(companies)],
			Status:      status,
			CreatedAt:   d.anchor.AddDate(0, 0, -15*(i+1)),
		}
	}
	return out
}

// Products returns the demo catalogue.
func (d *Dataset) Products() []domain.Product {
	r := d.rng(5)
	out := make([]domain.Product, len(catalogue))
	for i, p := range catalogue {
		status := domain.StatusActive
		stock := r.Intn(200)
		if stock == 0 {
			status = domain.StatusInactive
		}
		out[i] = domain.Product{
			ID:        domain.ID(fmt.Sprintf("prd-%02d", i+1)),
			Name:      p.name,
			SKU:       fmt.Sprintf("SKU-%04d", 1001+i),
			Category:  p.category,
			Price:     p.price,
			Stock:     stock,
			Status:    status,
			CreatedAt: d.anchor.AddDate(0, -i, 0),
		}
	}
	return out
}
