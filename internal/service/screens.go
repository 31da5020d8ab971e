package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/demo"
	"github.com/facturaja/facturaja-bff/internal/tabular"
)

// Screen names, used in URLs, cache keys, metrics and export file names.
const (
	ScreenInvoices  = "invoices"
	ScreenPayments  = "payments"
	ScreenAuditLogs = "audit-logs"
	ScreenCompanies = "companies"
	ScreenUsers     = "users"
	ScreenProducts  = "products"
)

// PageSizes configures the default page size per screen.
type PageSizes struct {
	Default int
	Audit   int
}

// Screens holds one Screen per list page of the frontend.
type Screens struct {
	Invoices  *Screen[domain.Invoice]
	Payments  *Screen[domain.Payment]
	AuditLogs *Screen[domain.AuditLogEntry]
	Companies *Screen[domain.Company]
	Users     *Screen[domain.User]
	Products  *Screen[domain.Product]
}

// NewScreens wires every screen to deps. Placeholder data is anchored at
// process start so that it stays stable for the life of the process.
func NewScreens(deps ScreenDeps, sizes PageSizes, dataset *demo.Dataset) *Screens {
	return &Screens{
		Invoices:  NewScreen(ScreenInvoices, "invoices", InvoiceSchema(sizes.Default), invoiceColumns, dataset.Invoices, deps),
		Payments:  NewScreen(ScreenPayments, "payments", PaymentSchema(sizes.Default), paymentColumns, dataset.Payments, deps),
		AuditLogs: NewScreen(ScreenAuditLogs, "audit-logs", AuditSchema(sizes.Audit), auditColumns, dataset.AuditLogs, deps),
		Companies: NewScreen(ScreenCompanies, "companies", CompanySchema(sizes.Default), companyColumns, dataset.Companies, deps),
		Users:     NewScreen(ScreenUsers, "users", UserSchema(sizes.Default), userColumns, dataset.Users, deps),
		Products:  NewScreen(ScreenProducts, "products", ProductSchema(sizes.Default), productColumns, dataset.Products, deps),
	}
}

// ============================================================
// Screen schemas
// ============================================================

// InvoiceSchema filters invoices by text, status and series; newest first.
func InvoiceSchema(pageSize int) tabular.Schema[domain.Invoice] {
	return tabular.Schema[domain.Invoice]{
		Searchable: func(i domain.Invoice) []string {
			return []string{i.Number, i.Customer, i.Company, i.Series, string(i.Status), i.Notes}
		},
		Categories: []tabular.Category[domain.Invoice]{
			{Name: "status", Value: func(i domain.Invoice) string { return string(i.Status) }},
			{Name: "series", Value: func(i domain.Invoice) string { return i.Series }},
		},
		Date: func(i domain.Invoice) time.Time { return i.IssueDate },
		Less: func(a, b domain.Invoice) bool {
			if !a.IssueDate.Equal(b.IssueDate) {
				return a.IssueDate.After(b.IssueDate)
			}
			return a.Number > b.Number
		},
		ID:       func(i domain.Invoice) string { return string(i.ID) },
		PageSize: pageSize,
	}
}

// PaymentSchema filters payments by text, status and method; newest first.
func PaymentSchema(pageSize int) tabular.Schema[domain.Payment] {
	return tabular.Schema[domain.Payment]{
		Searchable: func(p domain.Payment) []string {
			fields := []string{p.Reference, p.Customer, p.Company, string(p.Method), string(p.Status), p.Note}
			if p.InvoiceID != nil {
				fields = append(fields, string(*p.InvoiceID))
			}
			return fields
		},
		Categories: []tabular.Category[domain.Payment]{
			{Name: "status", Value: func(p domain.Payment) string { return string(p.Status) }},
			{Name: "method", Value: func(p domain.Payment) string { return string(p.Method) }},
		},
		Date:     func(p domain.Payment) time.Time { return p.Date },
		Less:     func(a, b domain.Payment) bool { return a.Date.After(b.Date) },
		ID:       func(p domain.Payment) string { return string(p.ID) },
		PageSize: pageSize,
	}
}

// AuditSchema filters audit entries over actor, company, action, object,
// description and IP; newest first.
func AuditSchema(pageSize int) tabular.Schema[domain.AuditLogEntry] {
	return tabular.Schema[domain.AuditLogEntry]{
		Searchable: func(e domain.AuditLogEntry) []string {
			return []string{e.Actor, e.Company, string(e.Action), e.Object, e.Description, e.IP}
		},
		Categories: []tabular.Category[domain.AuditLogEntry]{
			{Name: "action", Value: func(e domain.AuditLogEntry) string { return string(e.Action) }},
			{Name: "company", Value: func(e domain.AuditLogEntry) string { return e.Company }},
		},
		Date:     func(e domain.AuditLogEntry) time.Time { return e.Timestamp },
		Less:     func(a, b domain.AuditLogEntry) bool { return a.Timestamp.After(b.Timestamp) },
		ID:       func(e domain.AuditLogEntry) string { return string(e.ID) },
		PageSize: pageSize,
	}
}

func byName(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

func CompanySchema(pageSize int) tabular.Schema[domain.Company] {
	return tabular.Schema[domain.Company]{
		Searchable: func(c domain.Company) []string { return []string{c.Name, c.NIF, c.Email, c.Phone, c.Plan} },
		Categories: []tabular.Category[domain.Company]{
			{Name: "status", Value: func(c domain.Company) string { return c.Status }},
		},
		Date:     func(c domain.Company) time.Time { return c.CreatedAt },
		Less:     func(a, b domain.Company) bool { return byName(a.Name, b.Name) },
		ID:       func(c domain.Company) string { return string(c.ID) },
		PageSize: pageSize,
	}
}

func UserSchema(pageSize int) tabular.Schema[domain.User] {
	return tabular.Schema[domain.User]{
		Searchable: func(u domain.User) []string { return []string{u.Name, u.Email, u.Role, u.CompanyName} },
		Categories: []tabular.Category[domain.User]{
			{Name: "role", Value: func(u domain.User) string { return u.Role }},
			{Name: "status", Value: func(u domain.User) string { return u.Status }},
		},
		Date:     func(u domain.User) time.Time { return u.CreatedAt },
		Less:     func(a, b domain.User) bool { return byName(a.Name, b.Name) },
		ID:       func(u domain.User) string { return string(u.ID) },
		PageSize: pageSize,
	}
}

func ProductSchema(pageSize int) tabular.Schema[domain.Product] {
	return tabular.Schema[domain.Product]{
		Searchable: func(p domain.Product) []string { return []string{p.Name, p.SKU, p.Category} },
		Categories: []tabular.Category[domain.Product]{
			{Name: "category", Value: func(p domain.Product) string { return p.Category }},
			{Name: "status", Value: func(p domain.Product) string { return p.Status }},
		},
		Date:     func(p domain.Product) time.Time { return p.CreatedAt },
		Less:     func(a, b domain.Product) bool { return byName(a.Name, b.Name) },
		ID:       func(p domain.Product) string { return string(p.ID) },
		PageSize: pageSize,
	}
}

// ============================================================
// CSV columns
// ============================================================

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var invoiceColumns = []tabular.Column[domain.Invoice]{
	{Header: "Número", Value: func(i domain.Invoice) string { return i.Number }},
	{Header: "Cliente", Value: func(i domain.Invoice) string { return i.Customer }},
	{Header: "Série", Value: func(i domain.Invoice) string { return i.Series }},
	{Header: "Emissão", Value: func(i domain.Invoice) string { return day(i.IssueDate) }},
	{Header: "Vencimento", Value: func(i domain.Invoice) string { return day(i.DueDate) }},
	{Header: "Estado", Value: func(i domain.Invoice) string { return string(i.Status) }},
	{Header: "Subtotal", Value: func(i domain.Invoice) string { return money(i.Subtotal) }},
	{Header: "Imposto", Value: func(i domain.Invoice) string { return money(i.Tax) }},
	{Header: "Total", Value: func(i domain.Invoice) string { return money(i.Total) }},
}

var paymentColumns = []tabular.Column[domain.Payment]{
	{Header: "Referência", Value: func(p domain.Payment) string { return p.Reference }},
	{Header: "Cliente", Value: func(p domain.Payment) string { return p.Customer }},
	{Header: "Data", Value: func(p domain.Payment) string { return day(p.Date) }},
	{Header: "Método", Value: func(p domain.Payment) string { return string(p.Method) }},
	{Header: "Valor", Value: func(p domain.Payment) string { return money(p.Amount) }},
	{Header: "Estado", Value: func(p domain.Payment) string { return string(p.Status) }},
	{Header: "Fatura", Value: func(p domain.Payment) string {
		if p.InvoiceID == nil {
			return ""
		}
		return string(*p.InvoiceID)
	}},
}

var auditColumns = []tabular.Column[domain.AuditLogEntry]{
	{Header: "Data/Hora", Value: func(e domain.AuditLogEntry) string { return e.Timestamp.Format("2006-01-02 15:04:05") }},
	{Header: "Utilizador", Value: func(e domain.AuditLogEntry) string { return e.Actor }},
	{Header: "Empresa", Value: func(e domain.AuditLogEntry) string { return e.Company }},
	{Header: "Acção", Value: func(e domain.AuditLogEntry) string { return string(e.Action) }},
	{Header: "Objecto", Value: func(e domain.AuditLogEntry) string { return e.Object }},
	{Header: "Descrição", Value: func(e domain.AuditLogEntry) string { return e.Description }},
	{Header: "IP", Value: func(e domain.AuditLogEntry) string { return e.IP }},
}

var companyColumns = []tabular.Column[domain.Company]{
	{Header: "Nome", Value: func(c domain.Company) string { return c.Name }},
	{Header: "NIF", Value: func(c domain.Company) string { return c.NIF }},
	{Header: "Email", Value: func(c domain.Company) string { return c.Email }},
	{Header: "Telefone", Value: func(c domain.Company) string { return c.Phone }},
	{Header: "Plano", Value: func(c domain.Company) string { return c.Plan }},
	{Header: "Estado", Value: func(c domain.Company) string { return c.Status }},
}

var userColumns = []tabular.Column[domain.User]{
	{Header: "Nome", Value: func(u domain.User) string { return u.Name }},
	{Header: "Email", Value: func(u domain.User) string { return u.Email }},
	{Header: "Perfil", Value: func(u domain.User) string { return u.Role }},
	{Header: "Empresa", Value: func(u domain.User) string { return u.CompanyName }},
	{Header: "Estado", Value: func(u domain.User) string { return u.Status }},
}

var productColumns = []tabular.Column[domain.Product]{
	{Header: "Nome", Value: func(p domain.Product) string { return p.Name }},
	{Header: "SKU", Value: func(p domain.Product) string { return p.SKU }},
	{Header: "Categoria", Value: func(p domain.Product) string { return p.Category }},
	{Header: "Preço", Value: func(p domain.Product) string { return money(p.Price) }},
	{Header: "Stock", Value: func(p domain.Product) string { return strconv.Itoa(p.Stock) }},
	{Header: "Estado", Value: func(p domain.Product) string { return p.Status }},
}
