package domain

import "time"

// ============================================================
// Tenant directory: companies, users, products
// ============================================================

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Company is a tenant using the platform.
type Company struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	NIF       string    `json:"nif"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Plan      string    `json:"plan,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// User belongs to a company; CompanyName is denormalised for display.
type User struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyName string    `json:"companyName,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product is a sellable item in a tenant catalogue.
type Product struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompanyRequest is the body for company create/update.
type CompanyRequest struct {
	Name   string `json:"name" validate:"required"`
	NIF    string `json:"nif" validate:"required,min=9"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone"`
	Plan   string `json:"plan"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UserRequest is the body for user create/update.
type UserRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Role        string `json:"role" validate:"required,oneof=admin company customer"`
	CompanyName string `json:"companyName"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ProductRequest is the body for product create/update.
type ProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	SKU      string  `json:"sku" validate:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" validate:"gte=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive"`
}
