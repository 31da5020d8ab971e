package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/facturaja/facturaja-bff/internal/domain"
)

// Login exchanges email and password for a backend token via POST /api/auth/login.
func (b *BackendClient) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	body, err := b.do(ctx, call{op: "Login", method: http.MethodPost, path: "auth/login", body: req})
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Register creates a company account via POST /api/auth/cadastro.
func (b *BackendClient) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	body, err := b.do(ctx, call{op: "Register", method: http.MethodPost, path: "auth/cadastro", body: req})
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

func decodeAuth(body []byte) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("decoding auth response: %w", err)}
	}
	if resp.Token == "" {
		return nil, &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("auth response carries no token")}
	}
	return &resp, nil
}
