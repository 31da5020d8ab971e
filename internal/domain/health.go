package domain

// ============================================================
// Health & Ops API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// OpsStats is returned by GET /api/ops/stats.
type OpsStats struct {
	UpstreamErrors float64 `json:"upstreamErrors"`
	DemoFallbacks  float64 `json:"demoFallbacks"`
	Exports        float64 `json:"exports"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	Period         string  `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// PageResponse wraps one page of a filtered list screen.
type PageResponse[T any] struct {
	Data       []T    `json:"data"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	PageSize   int    `json:"pageSize"`
	Matched    int    `json:"matched"`
	Total      int    `json:"total"`
	Demo       bool   `json:"demo"`
	Notice     string `json:"notice,omitempty"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
