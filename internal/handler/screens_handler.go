package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/facturaja/facturaja-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// List screens — shared list, export and detail endpoints
// ============================================================

// Category query parameters accepted by each screen.
var (
	invoiceCategories = []string{"status", "series"}
	paymentCategories = []string{"status", "method"}
	auditCategories   = []string{"action", "company"}
	companyCategories = []string{"status"}
	userCategories    = []string{"role", "status"}
	productCategories = []string{"category", "status"}
)

func listHandler[T any](screen *service.Screen[T], categories []string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/"+screen.Name())
		defer span.End()

		q, err := parseListQuery(r, categories...)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.Int("page", q.Page),
			attribute.Bool("refresh", q.Refresh),
		)

		resp, err := screen.List(ctx, SessionFromContext(ctx), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func exportHandler[T any](screen *service.Screen[T], categories []string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/"+screen.Name()+"/export")
		defer span.End()

		q, err := parseListQuery(r, categories...)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		err = writeCSV(w, exportFilename(screen.Name(), time.Now()), func(buf *bytes.Buffer) error {
			return screen.Export(ctx, sess, q.Criteria, buf)
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		logger.Info("screen exported", zap.String("screen", screen.Name()))
	}
}

func getHandler[T any](screen *service.Screen[T], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/"+screen.Name()+"/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("record.id", id))

		item, err := screen.Get(ctx, SessionFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}
