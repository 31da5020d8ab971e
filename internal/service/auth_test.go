package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/cache"
	"github.com/facturaja/facturaja-bff/internal/infra/session"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

func newAuth(identity *mockIdentity) (*service.AuthService, *session.MemoryStore, *cache.InMemory[any]) {
	store := session.NewMemoryStore(time.Minute)
	views := cache.New[any](time.Minute)
	svc := service.NewAuthService(identity, store, views, "test-secret", time.Hour, zap.NewNop())
	return svc, store, views
}

func TestLogin_IssuesSessionToken(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream", Role: domain.RoleCompany}})
	defer store.Close()
	defer views.Close()
	ctx := context.Background()

	resp, err := svc.Login(ctx, &domain.LoginRequest{Email: " Ana@Kianda.ao ", Password: "segredo"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Token == "" || resp.Token == "upstream" {
		t.Fatalf("expected a BFF token distinct from the upstream one, got %q", resp.Token)
	}
	if resp.Role != domain.RoleCompany {
		t.Errorf("expected role company, got %s", resp.Role)
	}

	sess, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("expected token to resolve to a session, got %v", err)
	}
	if sess.UpstreamToken != "upstream" || sess.Email != "ana@kianda.ao" {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestLogin_UpstreamErrorPassesThrough(t *testing.T) {
	upstream := &domain.ErrUpstreamStatus{Service: "backend", Status: 422, Message: "Credenciais inválidas"}
	svc, store, views := newAuth(&mockIdentity{err: upstream})
	defer store.Close()
	defer views.Close()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.ao", Password: "x"})

	var got *domain.ErrUpstreamStatus
	if !errors.As(err, &got) || got.Status != 422 {
		t.Fatalf("expected upstream 422, got %v", err)
	}
}

func TestRegister_DefaultsToCompanyRole(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream"}})
	defer store.Close()
	defer views.Close()

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		EmpresaNome: "Kianda Comércio",
		EmpresaNIF:  "5417001234",
		Email:       "geral@kianda.ao",
		Senha:       "segredo",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Role != domain.RoleCompany || resp.Name != "Kianda Comércio" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAuthenticate_RejectsGarbageAndForeignTokens(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream", Role: domain.RoleAdmin}})
	defer store.Close()
	defer views.Close()

	other := service.NewAuthService(&mockIdentity{resp: &domain.AuthResponse{Token: "x", Role: domain.RoleAdmin}},
		store, views, "other-secret", time.Hour, zap.NewNop())
	foreign, err := other.Login(context.Background(), &domain.LoginRequest{Email: "a@b.ao", Password: "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, token := range []string{"not-a-jwt", foreign.Token} {
		_, err := svc.Authenticate(context.Background(), token)
		var unauthorized *domain.ErrUnauthorized
		if !errors.As(err, &unauthorized) {
			t.Errorf("expected ErrUnauthorized for %q, got %v", token, err)
		}
	}
}

func TestLogout_DropsSessionAndViews(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream", Role: domain.RoleCompany}})
	defer store.Close()
	defer views.Close()
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &domain.LoginRequest{Email: "a@b.ao", Password: "x"})
	sess, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	views.Set(service.ViewPrefix(sess.ID)+"invoices", "view")
	views.Set("view:someone-else:invoices", "view")

	if err := svc.Logout(ctx, sess); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.Authenticate(ctx, resp.Token); err == nil {
		t.Error("expected token to stop working after logout")
	}
	if _, ok := views.Get(service.ViewPrefix(sess.ID) + "invoices"); ok {
		t.Error("expected session views to be dropped")
	}
	if _, ok := views.Get("view:someone-else:invoices"); !ok {
		t.Error("expected other sessions' views to survive")
	}
}

func TestUpdatePreferences_PartialUpdate(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream", Role: domain.RoleCompany}})
	defer store.Close()
	defer views.Close()
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &domain.LoginRequest{Email: "a@b.ao", Password: "x"})
	sess, _ := svc.Authenticate(ctx, resp.Token)

	dark := true
	me, err := svc.UpdatePreferences(ctx, sess, &domain.PreferencesRequest{DarkMode: &dark})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !me.DarkMode || me.Theme != "light" {
		t.Errorf("expected dark mode on and theme untouched, got %+v", me.Preferences)
	}

	reloaded, _ := svc.Authenticate(ctx, resp.Token)
	if !reloaded.DarkMode {
		t.Error("expected preferences to persist in the session store")
	}
}

func TestUpdatePreferences_AfterLogoutDoesNotRestoreSession(t *testing.T) {
	svc, store, views := newAuth(&mockIdentity{resp: &domain.AuthResponse{Token: "upstream", Role: domain.RoleCompany}})
	defer store.Close()
	defer views.Close()
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &domain.LoginRequest{Email: "a@b.ao", Password: "x"})
	sess, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Logout(ctx, sess); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dark := true
	_, err = svc.UpdatePreferences(ctx, sess, &domain.PreferencesRequest{DarkMode: &dark})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := store.Get(ctx, sess.ID); err == nil {
		t.Error("expected the logged-out session to stay deleted")
	}
	if _, err := svc.Authenticate(ctx, resp.Token); err == nil {
		t.Error("expected token to keep failing after logout")
	}
}
