package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AskResponse is returned by POST /api/v1/ask on success. SQL carries the
// final validated statement, Rows mirrors the execution service's array.
type AskResponse struct {
	SQL  string           `json:"sql"`
	Rows []map[string]any `json:"rows"`
}
