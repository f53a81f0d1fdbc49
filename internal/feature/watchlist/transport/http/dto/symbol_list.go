// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// SymbolItem represents a watchlist symbol in the API response.
type SymbolItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	QuoteSymbol string `json:"quoteSymbol"`
	ChartSymbol string `json:"chartSymbol"`
}
