package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// List fetches GET /api/{resource}. Both a bare JSON array and the
// {"data": [...]} envelope are accepted.
func (b *BackendClient) List(ctx context.Context, token, resource string, out any) error {
	body, err := b.do(ctx, call{op: "List", method: http.MethodGet, path: resource, token: token, resource: resource})
	if err != nil {
		return err
	}
	return decodeList(body, out)
}

// Get fetches GET /api/{resource}/{id}.
func (b *BackendClient) Get(ctx context.Context, token, resource, id string, out any) error {
	body, err := b.do(ctx, call{op: "Get", method: http.MethodGet, path: itemPath(resource, id), token: token, resource: resource, id: id})
	if err != nil {
		return err
	}
	return decodeOne(body, out)
}

// Create posts body to /api/{resource} and decodes the stored record into out.
func (b *BackendClient) Create(ctx context.Context, token, resource string, body, out any) error {
	raw, err := b.do(ctx, call{op: "Create", method: http.MethodPost, path: resource, token: token, body: body, resource: resource})
	if err != nil {
		return err
	}
	return decodeOne(raw, out)
}

// Update sends the full record to PUT /api/{resource}/{id}.
func (b *BackendClient) Update(ctx context.Context, token, resource, id string, body, out any) error {
	raw, err := b.do(ctx, call{op: "Update", method: http.MethodPut, path: itemPath(resource, id), token: token, body: body, resource: resource, id: id})
	if err != nil {
		return err
	}
	return decodeOne(raw, out)
}

// Delete removes /api/{resource}/{id}.
func (b *BackendClient) Delete(ctx context.Context, token, resource, id string) error {
	_, err := b.do(ctx, call{op: "Delete", method: http.MethodDelete, path: itemPath(resource, id), token: token, resource: resource, id: id})
	return err
}

func itemPath(resource, id string) string {
	return resource + "/" + url.PathEscape(id)
}

func decodeList(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return errors.New("empty list response")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("decoding list response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return errors.New("list response has no data field")
	}
	return json.Unmarshal(envelope.Data, out)
}

// decodeOne unwraps an optional {"data": {...}} envelope. Empty bodies leave out untouched.
func decodeOne(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || out == nil {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if data, ok := envelope["data"]; ok {
			if d := bytes.TrimSpace(data); len(d) > 0 && d[0] == '{' {
				return json.Unmarshal(d, out)
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}
