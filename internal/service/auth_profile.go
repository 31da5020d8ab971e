package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/facturaja/facturaja-bff/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Me — GET /api/auth/me
// ============================================================

func (s *AuthService) Me(sess *domain.Session) *domain.MeResponse {
	return &domain.MeResponse{
		Email:       sess.Email,
		Role:        sess.Role,
		Preferences: sess.Preferences,
		ExpiresAt:   sess.ExpiresAt,
	}
}

// ============================================================
// UpdatePreferences — PUT /api/auth/preferences
// ============================================================

// UpdatePreferences changes the display settings of the session. Nil fields
// in req are left as they are. A session that was logged out meanwhile is
// not brought back.
func (s *AuthService) UpdatePreferences(ctx context.Context, sess *domain.Session, req *domain.PreferencesRequest) (*domain.MeResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdatePreferences")
	defer span.End()

	updated := *sess
	if req.DisplayName != nil {
		updated.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		updated.AvatarURL = *req.AvatarURL
	}
	if req.DarkMode != nil {
		updated.DarkMode = *req.DarkMode
	}
	if req.Theme != nil {
		updated.Theme = *req.Theme
	}

	if err := s.sessions.Update(ctx, &updated); err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "Sessão terminada"}
		}
		return nil, fmt.Errorf("save preferences: %w", err)
	}

	s.logger.Info("preferences updated", zap.String("session_id", sess.ID))
	return s.Me(&updated), nil
}
