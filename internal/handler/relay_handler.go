package handler

import (
	"io"
	"net/http"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxRelayBody = 10 << 20

// ============================================================
// Relay — ANY /api/relay?path=<p>
// ============================================================

func relayHandler(svc *service.RelayService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /api/relay")
		defer span.End()

		query := r.URL.Query()
		path := query.Get("path")
		query.Del("path")
		span.SetAttributes(attribute.String("relay.path", path))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRelayBody))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		resp, err := svc.Forward(ctx, SessionFromContext(ctx), &domain.RelayRequest{
			Method:      r.Method,
			Path:        path,
			Query:       query,
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(resp.Status)
		w.Write(resp.Body)
	}
}
