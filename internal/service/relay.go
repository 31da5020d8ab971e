package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var relayTracer = otel.Tracer("service/relay")

// RelayService forwards arbitrary calls to the backend with the session's
// upstream token, for endpoints the BFF does not model.
type RelayService struct {
	forwarder port.Forwarder
	logger    *zap.Logger
}

// NewRelayService creates a new relay service.
func NewRelayService(forwarder port.Forwarder, logger *zap.Logger) *RelayService {
	return &RelayService{forwarder: forwarder, logger: logger}
}

// Forward relays req. The backend's status and body come back unchanged;
// the content type is JSON when the body parses as JSON and plain text otherwise.
func (s *RelayService) Forward(ctx context.Context, sess *domain.Session, req *domain.RelayRequest) (*domain.RelayResponse, error) {
	ctx, span := relayTracer.Start(ctx, "RelayService.Forward")
	defer span.End()

	if sess == nil {
		return nil, &domain.ErrUnauthorized{Message: "Sessão necessária"}
	}

	path, err := cleanRelayPath(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	span.SetAttributes(
		attribute.String("relay.method", req.Method),
		attribute.String("relay.path", path),
	)

	resp, err := s.forwarder.Forward(ctx, sess.UpstreamToken, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Body) > 0 && json.Valid(resp.Body) {
		resp.ContentType = "application/json"
	} else {
		resp.ContentType = "text/plain; charset=utf-8"
	}

	s.logger.Debug("relay forwarded",
		zap.String("session_id", sess.ID),
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.Int("status", resp.Status),
	)
	return resp, nil
}

// cleanRelayPath strips leading slashes and rejects paths that try to leave
// the backend's /api tree. The rest is kept as given, so "api/x" is sent to
// /api/api/x.
func cleanRelayPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", &domain.ErrValidation{Field: "path", Message: "obrigatório"}
	}
	if strings.Contains(p, "..") || strings.Contains(p, "://") || strings.ContainsAny(p, "?#\\") {
		return "", &domain.ErrValidation{Field: "path", Message: "caminho inválido"}
	}
	return p, nil
}
