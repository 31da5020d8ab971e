package service

import (
	"context"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var directoryTracer = otel.Tracer("service/directory")

// DirectoryService manages companies, users and products. Deletes are soft:
// the record stays with status inactive.
type DirectoryService struct {
	companies *Screen[domain.Company]
	users     *Screen[domain.User]
	products  *Screen[domain.Product]
	logger    *zap.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(screens *Screens, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		companies: screens.Companies,
		users:     screens.Users,
		products:  screens.Products,
		logger:    logger,
	}
}

// requireAdmin rejects callers without the admin role. Placeholder sessions
// (no session at all) are allowed so the demo stays explorable.
func requireAdmin(sess *domain.Session, action string) error {
	if sess != nil && sess.Role != domain.RoleAdmin {
		return &domain.ErrForbidden{Action: action}
	}
	return nil
}

func statusOr(s string) string {
	if s == "" {
		return domain.StatusActive
	}
	return s
}

// ============================================================
// Companies
// ============================================================

func (s *DirectoryService) CreateCompany(ctx context.Context, sess *domain.Session, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.CreateCompany")
	defer span.End()

	if err := requireAdmin(sess, "criar empresas"); err != nil {
		return nil, err
	}
	for _, c := range loadedItems(ctx, s.companies, sess) {
		if c.NIF == req.NIF && c.Status == domain.StatusActive {
			return nil, &domain.ErrConflict{Message: "NIF já registado"}
		}
	}

	c := domain.Company{
		ID:        domain.ID(uuid.NewString()),
		Name:      req.Name,
		NIF:       req.NIF,
		Email:     req.Email,
		Phone:     req.Phone,
		Plan:      req.Plan,
		Status:    statusOr(req.Status),
		CreatedAt: time.Now(),
	}
	stored, err := s.companies.create(ctx, sess, c)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *DirectoryService) UpdateCompany(ctx context.Context, sess *domain.Session, id string, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.UpdateCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", id))

	if err := requireAdmin(sess, "editar empresas"); err != nil {
		return nil, err
	}
	updated, err := s.companies.modify(ctx, sess, id, func(c *domain.Company) error {
		c.Name, c.NIF, c.Email, c.Phone, c.Plan = req.Name, req.NIF, req.Email, req.Phone, req.Plan
		if req.Status != "" {
			c.Status = req.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *DirectoryService) DeactivateCompany(ctx context.Context, sess *domain.Session, id string) (*domain.Company, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.DeactivateCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", id))

	if err := requireAdmin(sess, "desactivar empresas"); err != nil {
		return nil, err
	}
	updated, err := s.companies.modify(ctx, sess, id, func(c *domain.Company) error {
		c.Status = domain.StatusInactive
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("company deactivated", zap.String("company_id", id))
	return &updated, nil
}

// ============================================================
// Users
// ============================================================

func (s *DirectoryService) CreateUser(ctx context.Context, sess *domain.Session, req *domain.UserRequest) (*domain.User, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.CreateUser")
	defer span.End()

	if err := requireAdmin(sess, "criar utilizadores"); err != nil {
		return nil, err
	}
	for _, u := range loadedItems(ctx, s.users, sess) {
		if u.Email == req.Email {
			return nil, &domain.ErrConflict{Message: "Email já registado"}
		}
	}

	u := domain.User{
		ID:          domain.ID(uuid.NewString()),
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		CompanyName: req.CompanyName,
		Status:      statusOr(req.Status),
		CreatedAt:   time.Now(),
	}
	stored, err := s.users.create(ctx, sess, u)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *DirectoryService) UpdateUser(ctx context.Context, sess *domain.Session, id string, req *domain.UserRequest) (*domain.User, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	if err := requireAdmin(sess, "editar utilizadores"); err != nil {
		return nil, err
	}
	updated, err := s.users.modify(ctx, sess, id, func(u *domain.User) error {
		u.Name, u.Email, u.Role, u.CompanyName = req.Name, req.Email, req.Role, req.CompanyName
		if req.Status != "" {
			u.Status = req.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *DirectoryService) DeactivateUser(ctx context.Context, sess *domain.Session, id string) (*domain.User, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.DeactivateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	if err := requireAdmin(sess, "desactivar utilizadores"); err != nil {
		return nil, err
	}
	updated, err := s.users.modify(ctx, sess, id, func(u *domain.User) error {
		u.Status = domain.StatusInactive
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user deactivated", zap.String("user_id", id))
	return &updated, nil
}

// ============================================================
// Products
// ============================================================

func (s *DirectoryService) CreateProduct(ctx context.Context, sess *domain.Session, req *domain.ProductRequest) (*domain.Product, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.CreateProduct")
	defer span.End()

	for _, p := range loadedItems(ctx, s.products, sess) {
		if p.SKU == req.SKU {
			return nil, &domain.ErrConflict{Message: "SKU já existe"}
		}
	}

	p := domain.Product{
		ID:        domain.ID(uuid.NewString()),
		Name:      req.Name,
		SKU:       req.SKU,
		Category:  req.Category,
		Price:     req.Price,
		Stock:     req.Stock,
		Status:    statusOr(req.Status),
		CreatedAt: time.Now(),
	}
	stored, err := s.products.create(ctx, sess, p)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *DirectoryService) UpdateProduct(ctx context.Context, sess *domain.Session, id string, req *domain.ProductRequest) (*domain.Product, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	updated, err := s.products.modify(ctx, sess, id, func(p *domain.Product) error {
		p.Name, p.SKU, p.Category, p.Price, p.Stock = req.Name, req.SKU, req.Category, req.Price, req.Stock
		if req.Status != "" {
			p.Status = req.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *DirectoryService) DeactivateProduct(ctx context.Context, sess *domain.Session, id string) (*domain.Product, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.DeactivateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	updated, err := s.products.modify(ctx, sess, id, func(p *domain.Product) error {
		p.Status = domain.StatusInactive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// loadedItems returns the loaded collection or nil. Uniqueness checks are
// best effort and the backend has the final say.
func loadedItems[T any](ctx context.Context, screen *Screen[T], sess *domain.Session) []T {
	items, _, _, err := screen.items(ctx, sess)
	if err != nil {
		return nil
	}
	return items
}
