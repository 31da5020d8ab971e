// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/facturaja/facturaja-bff/internal/domain"
)

// Identity exchanges credentials for a backend bearer token.
type Identity interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
}

// Resources is the REST surface of the billing backend (/api/{resource}).
// Every call carries the caller's upstream bearer token. Results are decoded into out.
type Resources interface {
	List(ctx context.Context, token, resource string, out any) error
	Get(ctx context.Context, token, resource, id string, out any) error
	Create(ctx context.Context, token, resource string, body, out any) error
	Update(ctx context.Context, token, resource, id string, body, out any) error
	Delete(ctx context.Context, token, resource, id string) error
}

// Forwarder relays arbitrary requests to the backend without interpreting them.
type Forwarder interface {
	Forward(ctx context.Context, token string, req *domain.RelayRequest) (*domain.RelayResponse, error)
}

// SessionStore persists server-side sessions. Get and Update return
// *domain.ErrNotFound for unknown or expired ids; Update never creates one.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Update(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	GetOrCreate(key string, create func() T) (T, bool)
	Delete(key string)
	DeletePrefix(prefix string) int
}
