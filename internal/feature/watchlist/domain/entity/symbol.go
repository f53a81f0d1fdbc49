// Package entity defines the domain models for the watchlist feature.
package entity

import (
	"time"

	assetentity "market_backend/internal/feature/assets/domain/entity"
)

// Symbol is one configured entry of the watchlist. Code is stored in any of the
// accepted notations (bare or vendor-decorated).
type Symbol struct {
	ID        uint
	Code      string
	Name      string
	IsActive  bool
	SortKey   int
	UpdatedAt time.Time
}

// ListedSymbol is a watchlist entry resolved to its category and the two
// vendor notations.
type ListedSymbol struct {
	Symbol
	Category    assetentity.Category
	QuoteSymbol string
	ChartSymbol string
}
