// Package service — AuthService delegates login and registration to the
// billing backend and keeps the resulting bearer token in a server-side session.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService orchestrates authentication flows.
type AuthService struct {
	identity   port.Identity
	sessions   port.SessionStore
	views      port.Cache[any]
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(identity port.Identity, sessions port.SessionStore, views port.Cache[any], jwtSecret string, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		identity:   identity,
		sessions:   sessions,
		views:      views,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// ============================================================
// Login — POST /api/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	upstream, err := s.identity.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login: backend rejected credentials",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		return nil, err
	}

	name := upstream.Name
	if name == "" {
		name = req.Email
	}
	return s.startSession(ctx, upstream, req.Email, name)
}

// ============================================================
// Register — POST /api/auth/cadastro
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.EmpresaNIF = strings.TrimSpace(req.EmpresaNIF)

	upstream, err := s.identity.Register(ctx, req)
	if err != nil {
		s.logger.Warn("register: backend rejected company",
			zap.String("email", req.Email),
			zap.String("nif", req.EmpresaNIF),
			zap.Error(err),
		)
		return nil, err
	}
	if upstream.Role == "" {
		upstream.Role = domain.RoleCompany
	}
	return s.startSession(ctx, upstream, req.Email, req.EmpresaNome)
}

// startSession stores the upstream token and issues the browser token.
func (s *AuthService) startSession(ctx context.Context, upstream *domain.AuthResponse, email, displayName string) (*domain.AuthResponse, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:            uuid.NewString(),
		UpstreamToken: upstream.Token,
		Role:          upstream.Role,
		Email:         email,
		Preferences:   domain.Preferences{DisplayName: displayName, Theme: "light"},
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.signSessionToken(sess)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("role", sess.Role),
	)
	return &domain.AuthResponse{Token: token, Role: sess.Role, Name: displayName}, nil
}

// ============================================================
// Logout — POST /api/auth/logout
// ============================================================

// Logout drops the session and every list view cached for it.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sess.ID))

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	dropped := s.views.DeletePrefix(ViewPrefix(sess.ID))

	s.logger.Info("session ended",
		zap.String("session_id", sess.ID),
		zap.Int("views_dropped", dropped),
	)
	return nil
}
