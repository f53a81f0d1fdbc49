package entity

import "time"

// MarketItem is one row of the read surface. Error marks a placeholder for a
// symbol that has no data; its numeric fields are all zero.
type MarketItem struct {
	Asset
	ChartSymbol string
	Error       bool
	ErrorReason string
}

// MarketView groups items by category.
type MarketView struct {
	Groups      map[Category][]MarketItem
	LastUpdated time.Time
	// Degraded is set when the store could not be read and every item is a placeholder.
	Degraded      bool
	FailedSymbols []FailedSymbol
}
