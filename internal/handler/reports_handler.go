package handler

import (
	"net/http"

	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Relatórios — GET /api/reports/summary
// ============================================================

func reportSummaryHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/reports/summary")
		defer span.End()

		from, err := parseDay(r.URL.Query().Get("from"), "from")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		to, err := parseDay(r.URL.Query().Get("to"), "to")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		summary, err := svc.Summary(ctx, SessionFromContext(ctx), from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// ============================================================
// Ops — GET /api/ops/stats (admin)
// ============================================================

func opsStatsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
