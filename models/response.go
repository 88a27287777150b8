package models

// Request-level status values reported by the API.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// QuoteResponse is the response for GET /api/v1/quote.
type QuoteResponse struct {
	// Status is "success", "degraded" (result produced with diagnostics),
	// or "error".
	Status string `json:"status"`

	// Symbol is the requested symbol.
	Symbol string `json:"symbol,omitempty"`

	// URL is the final quote page URL the session landed on.
	URL string `json:"url,omitempty"`

	// Data is the extracted quote record. Present on success and degraded
	// responses.
	Data *QuoteData `json:"data,omitempty"`

	// Screenshot, HTML and JSON are the persisted artifact paths. Partial
	// artifacts are reported even when a later step failed.
	Screenshot string `json:"screenshot,omitempty"`
	HTML       string `json:"html,omitempty"`
	JSON       string `json:"json,omitempty"`

	// Timestamp is the artifact timestamp (YYYYMMDD_HHMMSS).
	Timestamp string `json:"timestamp,omitempty"`

	// ElapsedSeconds is the end-to-end request duration.
	ElapsedSeconds float64 `json:"elapsed_time_seconds"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching disabled).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Status is "error".
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string       `json:"status"` // "healthy" or "degraded"
	Uptime       string       `json:"uptime"`
	SessionStats SessionStats `json:"session_stats"`
	Version      string       `json:"version"`
}

// SessionStats reports browser session usage.
type SessionStats struct {
	ActiveSessions int   `json:"active_sessions"`
	TotalSessions  int64 `json:"total_sessions"`
}
