package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Forward sends req to {baseURL}/api/{path} and returns the backend's answer
// whatever its status. Only transport failures are errors. Idempotent methods
// are retried on transport failures and 5xx answers; the last answer wins.
func (b *BackendClient) Forward(ctx context.Context, token string, req *domain.RelayRequest) (*domain.RelayResponse, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.Forward")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("backend.path", req.Path),
	)

	if err := b.bulkhead.Acquire(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.ErrTimeout{Operation: "relay"}
	}
	defer b.bulkhead.Release()

	target := b.url(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	cfg := b.cfg
	if !idempotent(req.Method) {
		cfg.MaxRetries = 0
	}

	var last *domain.RelayResponse
	err := resilience.RetryWithBackoff(ctx, cfg, func() error {
		var reader io.Reader
		if len(req.Body) > 0 {
			reader = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
		if err != nil {
			return resilience.Permanent(err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set("Accept", "application/json")
		if req.ContentType != "" {
			httpReq.Header.Set("Content-Type", req.ContentType)
		}

		resp, err := b.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		last = &domain.RelayResponse{
			Status:      resp.StatusCode,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return nil
	})

	if last != nil {
		if last.Status >= 500 {
			b.metrics.IncrUpstreamError("Forward")
		}
		return last, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	b.metrics.IncrUpstreamError("Forward")
	b.logger.Warn("backend: relay failed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Error(err),
	)
	span.RecordError(err)
	return nil, &domain.ErrExternalService{Service: serviceName, Err: err}
}
