package domain

import "net/url"

// RelayRequest is a browser call forwarded verbatim to the billing backend.
type RelayRequest struct {
	Method      string
	Path        string // relative to {BACKEND_URL}/api/
	Query       url.Values
	Body        []byte
	ContentType string
}

// RelayResponse is the backend's answer, handed back unchanged.
type RelayResponse struct {
	Status      int
	Body        []byte
	ContentType string
}
