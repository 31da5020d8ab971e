package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/service"
	"github.com/facturaja/facturaja-bff/internal/tabular"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody decodes the JSON body into dst and runs its validate tags.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	if err := validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			fe := fields[0]
			return &domain.ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
		}
		return &domain.ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "datetime":
		return "must be a date in the format " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "max", "gt", "gte", "lte":
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}

// parseListQuery reads the shared list parameters plus the screen's category
// parameters. Empty values and "all" leave a category unfiltered.
func parseListQuery(r *http.Request, categories ...string) (service.ListQuery, error) {
	q := r.URL.Query()
	lq := service.ListQuery{
		Criteria: tabular.Criteria{
			Query:      q.Get("q"),
			Categories: make(map[string]string, len(categories)),
		},
		Page: 1,
	}
	for _, name := range categories {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			lq.Criteria.Categories[name] = v
		}
	}

	var err error
	if lq.Criteria.From, err = parseDay(q.Get("from"), "from"); err != nil {
		return lq, err
	}
	if lq.Criteria.To, err = parseDay(q.Get("to"), "to"); err != nil {
		return lq, err
	}

	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			lq.Page = p
		}
	}
	if v := q.Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 100 {
			lq.PageSize = ps
		}
	}
	lq.Refresh = q.Get("refresh") == "true"
	return lq, nil
}

func parseDay(v, field string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, &domain.ErrValidation{Field: field, Message: "must be a date in the format 2006-01-02"}
	}
	return &t, nil
}

// writeCSV renders an export into memory first so a failure can still be
// reported as JSON.
func writeCSV(w http.ResponseWriter, filename string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
	return nil
}

func exportFilename(screen string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", screen, now.Format("2006-01-02"))
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var transition *domain.ErrInvalidTransition
	var forbidden *domain.ErrForbidden
	var unauthorized *domain.ErrUnauthorized
	var conflict *domain.ErrConflict
	var upstream *domain.ErrUpstreamStatus
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transition):
		logger.Debug("invalid transition",
			zap.String("entity", transition.Entity),
			zap.String("from", transition.From),
			zap.String("to", transition.To),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &upstream):
		logger.Warn("upstream rejected request",
			zap.String("service", upstream.Service),
			zap.Int("status", upstream.Status),
		)
		status := upstream.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("backend unavailable", zap.Error(err))
		writeError(w, http.StatusBadGateway, "billing backend unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
