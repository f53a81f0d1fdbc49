// Package dto defines data transfer objects for the assets HTTP API.
package dto

import "time"

// MarketItem is one asset row. Error marks a placeholder with all numeric fields zero
// and no lastUpdated.
type MarketItem struct {
	ID               string     `json:"id"`
	Symbol           string     `json:"symbol"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Price            float64    `json:"price"`
	Change           float64    `json:"change"`
	ChangePercent    float64    `json:"changePercent"`
	Volume           int64      `json:"volume"`
	MarketCap        *float64   `json:"marketCap"`
	MarketCapRank    *int       `json:"marketCapRank,omitempty"`
	DayHigh          float64    `json:"dayHigh"`
	DayLow           float64    `json:"dayLow"`
	Open             float64    `json:"open"`
	PreviousClose    float64    `json:"previousClose"`
	FiftyTwoWeekHigh float64    `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64    `json:"fiftyTwoWeekLow"`
	AverageVolume    int64      `json:"averageVolume"`
	LastUpdated      *time.Time `json:"lastUpdated,omitempty"`
	ChartSymbol      string     `json:"chartSymbol"`
	Error            bool       `json:"error"`
	ErrorReason      string     `json:"errorReason,omitempty"`
}

// FailedSymbol is a symbol whose quote could not be fetched.
type FailedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// MarketResponse groups items by category. Keys follow the dashboard's naming.
type MarketResponse struct {
	Stocks        []MarketItem   `json:"stocks"`
	Indices       []MarketItem   `json:"indices"`
	Commodities   []MarketItem   `json:"commodities"`
	Crypto        []MarketItem   `json:"crypto"`
	Forex         []MarketItem   `json:"forex"`
	Funds         []MarketItem   `json:"funds"`
	LastUpdated   *time.Time     `json:"lastUpdated"`
	Degraded      bool           `json:"degraded,omitempty"`
	FailedSymbols []FailedSymbol `json:"failedSymbols,omitempty"`
}
