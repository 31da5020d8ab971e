package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/cache"
	"github.com/facturaja/facturaja-bff/internal/infra/demo"
	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

var anchor = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

// --- Mocks ---

type mockResources struct {
	mu        sync.Mutex
	lists     map[string]any
	listErr   error
	listCalls int
	// listGate, when set, holds every List call until it is closed.
	listGate chan struct{}
	created   []any
	updated   map[string]any
	deleted   []string
}

func newMockResources() *mockResources {
	return &mockResources{lists: map[string]any{}, updated: map[string]any{}}
}

func copyJSON(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (m *mockResources) List(ctx context.Context, _, resource string, out any) error {
	m.mu.Lock()
	m.listCalls++
	gate := m.listGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return m.listErr
	}
	return copyJSON(m.lists[resource], out)
}

func (m *mockResources) Get(_ context.Context, _, resource, id string, _ any) error {
	return &domain.ErrNotFound{Resource: resource, ID: id}
}

func (m *mockResources) Create(_ context.Context, _, _ string, body, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, body)

	var record map[string]any
	if err := copyJSON(body, &record); err != nil {
		return err
	}
	record["id"] = "srv-1"
	return copyJSON(record, out)
}

func (m *mockResources) Update(_ context.Context, _, _, id string, body, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated[id] = body
	return copyJSON(body, out)
}

func (m *mockResources) Delete(_ context.Context, _, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockResources) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

type mockIdentity struct {
	resp *domain.AuthResponse
	err  error
}

func (m *mockIdentity) Login(_ context.Context, _ *domain.LoginRequest) (*domain.AuthResponse, error) {
	return m.resp, m.err
}

func (m *mockIdentity) Register(_ context.Context, _ *domain.RegisterRequest) (*domain.AuthResponse, error) {
	return m.resp, m.err
}

type mockForwarder struct {
	resp  *domain.RelayResponse
	err   error
	token string
	path  string
}

func (m *mockForwarder) Forward(_ context.Context, token string, req *domain.RelayRequest) (*domain.RelayResponse, error) {
	m.token, m.path = token, req.Path
	return m.resp, m.err
}

// --- Helpers ---

func liveSession(role string) *domain.Session {
	return &domain.Session{
		ID:            "sid-1",
		UpstreamToken: "upstream-token",
		Role:          role,
		Email:         "ana@kianda.ao",
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func newScreens(res *mockResources) (*service.Screens, *cache.InMemory[any]) {
	views := cache.New[any](time.Minute)
	deps := service.ScreenDeps{
		Resources: res,
		Views:     views,
		Metrics:   observability.NewMetrics(),
		Logger:    zap.NewNop(),
	}
	return service.NewScreens(deps, service.PageSizes{Default: 10, Audit: 15}, demo.New(anchor)), views
}
