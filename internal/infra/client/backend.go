// Package client talks to the FacturaJá billing backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const serviceName = "backend"

// BackendClient calls the billing backend REST API. It implements
// port.Identity, port.Resources and port.Forwarder.
type BackendClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBackendClient creates a new BackendClient.
func NewBackendClient(httpClient *http.Client, baseURL string, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *BackendClient {
	return &BackendClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         resilience.NewCircuitBreaker(serviceName, isNeutral),
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// IsClientError reports whether err is a backend answer about the request
// itself (4xx) rather than a backend failure.
func IsClientError(err error) bool {
	var upstream *domain.ErrUpstreamStatus
	var notFound *domain.ErrNotFound
	return errors.As(err, &upstream) || errors.As(err, &notFound)
}

// isNeutral reports errors that say nothing about the backend's health:
// 4xx answers and callers that went away before the answer.
func isNeutral(err error) bool {
	return IsClientError(err) || errors.Is(err, context.Canceled)
}

// call describes one JSON request to the backend.
type call struct {
	op       string
	method   string
	path     string // relative to /api/
	token    string
	body     any
	resource string
	id       string
}

// do executes c inside the bulkhead, through the circuit breaker and, for
// idempotent methods, the retry loop. The raw 2xx body is returned.
func (b *BackendClient) do(ctx context.Context, c call) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "BackendClient."+c.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", c.method),
		attribute.String("backend.path", c.path),
	)

	var payload []byte
	if c.body != nil {
		var err error
		if payload, err = json.Marshal(c.body); err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", c.op, err)
		}
	}

	if err := b.bulkhead.Acquire(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.ErrTimeout{Operation: c.op}
	}
	defer b.bulkhead.Release()

	cfg := b.cfg
	if !idempotent(c.method) {
		cfg.MaxRetries = 0
	}

	start := time.Now()
	result, err := b.cb.Execute(func() (any, error) {
		var body []byte
		innerErr := resilience.RetryWithBackoff(ctx, cfg, func() error {
			var err error
			body, err = b.roundTrip(ctx, c, payload)
			return err
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return body, nil
	})
	b.metrics.RecordRequestDuration(c.op, time.Since(start))

	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		err = b.classify(c, err)
		if !IsClientError(err) {
			b.metrics.IncrUpstreamError(c.op)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return result.([]byte), nil
}

// roundTrip performs a single HTTP exchange. 4xx answers are permanent.
func (b *BackendClient) roundTrip(ctx context.Context, c call, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, b.url(c.path), reader)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Warn("backend: request failed",
			zap.String("op", c.op),
			zap.String("path", c.path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		b.logger.Debug("backend: request OK",
			zap.String("op", c.op),
			zap.String("path", c.path),
			zap.Int("status", resp.StatusCode),
		)
		return body, nil
	case resp.StatusCode == http.StatusNotFound && c.id != "":
		return nil, resilience.Permanent(&domain.ErrNotFound{Resource: c.resource, ID: c.id})
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		b.logger.Warn("backend: client error",
			zap.String("op", c.op),
			zap.String("path", c.path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, resilience.Permanent(&domain.ErrUpstreamStatus{
			Service: serviceName,
			Status:  resp.StatusCode,
			Message: upstreamMessage(body, resp.StatusCode),
		})
	default:
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
}

// classify converts a failed call into the domain error taxonomy.
func (b *BackendClient) classify(c call, err error) error {
	switch {
	case IsClientError(err):
		return err
	case resilience.IsBreakerOpen(err):
		return &domain.ErrCircuitOpen{Service: serviceName}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: c.op}
	default:
		return &domain.ErrExternalService{Service: serviceName, Err: err}
	}
}

func (b *BackendClient) url(path string) string {
	return b.baseURL + "/api/" + strings.TrimLeft(path, "/")
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// upstreamMessage extracts the Laravel {"message": ...} field, falling back
// to the HTTP status text.
func upstreamMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
