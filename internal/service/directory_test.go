package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

func TestDirectory_CompanyMutationsRequireAdmin(t *testing.T) {
	res := newMockResources()
	res.lists["companies"] = []domain.Company{{ID: "c1", Name: "Kianda", NIF: "541700001", Status: domain.StatusActive}}
	screens, views := newScreens(res)
	defer views.Close()
	svc := service.NewDirectoryService(screens, zap.NewNop())

	_, err := svc.DeactivateCompany(context.Background(), liveSession(domain.RoleCompany), "c1")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, err := svc.DeactivateCompany(context.Background(), liveSession(domain.RoleAdmin), "c1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Status != domain.StatusInactive {
		t.Errorf("expected soft delete, got status %s", c.Status)
	}
}

func TestDirectory_DuplicateNIF(t *testing.T) {
	res := newMockResources()
	res.lists["companies"] = []domain.Company{{ID: "c1", Name: "Kianda", NIF: "541700001", Status: domain.StatusActive}}
	screens, views := newScreens(res)
	defer views.Close()
	svc := service.NewDirectoryService(screens, zap.NewNop())

	_, err := svc.CreateCompany(context.Background(), liveSession(domain.RoleAdmin), &domain.CompanyRequest{
		Name: "Outra", NIF: "541700001", Email: "x@y.ao",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDirectory_ProductLifecycleInDemo(t *testing.T) {
	screens, views := newScreens(newMockResources())
	defer views.Close()
	svc := service.NewDirectoryService(screens, zap.NewNop())
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, nil, &domain.ProductRequest{Name: "Caneta", SKU: "SKU-9999", Price: 150, Stock: 40})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Status != domain.StatusActive {
		t.Errorf("expected new products to be active, got %s", p.Status)
	}

	p, err = svc.DeactivateProduct(ctx, nil, p.ID.String())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Status != domain.StatusInactive {
		t.Errorf("expected inactive, got %s", p.Status)
	}

	page, _ := screens.Products.List(ctx, nil, service.ListQuery{})
	if page.Total != 9 {
		t.Errorf("expected soft delete to keep the row, got %d products", page.Total)
	}
}
