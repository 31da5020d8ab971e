package domain

import "time"

// ============================================================
// Auth — Request / Response types (matches frontend API contract)
// ============================================================

const (
	RoleAdmin    = "admin"
	RoleCompany  = "company"
	RoleCustomer = "customer"
)

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body for POST /api/auth/cadastro.
type RegisterRequest struct {
	EmpresaNome string `json:"empresaNome" validate:"required"`
	EmpresaNIF  string `json:"empresaNIF" validate:"required,min=9"`
	Email       string `json:"email" validate:"required,email"`
	Senha       string `json:"senha" validate:"required,min=6"`
}

// AuthResponse is returned by login and cadastro, both by the backend and by the BFF.
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// Session is the server-side state behind one browser login. It replaces the
// token/name/avatar/theme values the frontend used to keep in local storage.
type Session struct {
	ID            string    `json:"id"`
	UpstreamToken string    `json:"upstreamToken"`
	Role          string    `json:"role"`
	Email         string    `json:"email"`
	Preferences
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Preferences are the display settings attached to a session.
type Preferences struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	DarkMode    bool   `json:"darkMode"`
	Theme       string `json:"theme"`
}

// PreferencesRequest is the body for PUT /api/auth/preferences. Nil fields are left untouched.
type PreferencesRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=120"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
	DarkMode    *bool   `json:"darkMode"`
	Theme       *string `json:"theme" validate:"omitempty,max=40"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Preferences
	ExpiresAt time.Time `json:"expiresAt"`
}
