package dto

// RefreshResponse is returned by the cron refresh endpoint.
type RefreshResponse struct {
	Success       bool           `json:"success"`
	Count         int            `json:"count"`
	FailedSymbols []FailedSymbol `json:"failedSymbols,omitempty"`
	Skipped       []string       `json:"skipped,omitempty"`
	Timestamp     string         `json:"timestamp"`
}

// RefreshErrorResponse is returned when the refresh run fails as a whole.
type RefreshErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}
