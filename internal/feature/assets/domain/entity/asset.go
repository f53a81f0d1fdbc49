// Package entity defines the domain models for the assets feature.
package entity

import "time"

// Category は資産の種別です。DBの category カラムにそのまま保存されます。
type Category string

const (
	CategoryStock     Category = "stock"
	CategoryIndex     Category = "index"
	CategoryCommodity Category = "commodity"
	CategoryCrypto    Category = "crypto"
	CategoryForex     Category = "forex"
	CategoryFund      Category = "fund"
)

// Categories is the fixed refresh and display order.
var Categories = []Category{
	CategoryStock,
	CategoryIndex,
	CategoryCommodity,
	CategoryCrypto,
	CategoryForex,
	CategoryFund,
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// MarketData holds the numeric fields shared by quotes and stored assets.
// Missing upstream values are 0, except MarketCap which is nil when unknown.
type MarketData struct {
	Price            float64
	Change           float64
	ChangePercent    float64
	Volume           int64
	MarketCap        *float64
	DayHigh          float64
	DayLow           float64
	OpenPrice        float64
	PreviousClose    float64
	FiftyTwoWeekHigh float64
	FiftyTwoWeekLow  float64
	AverageVolume    int64
}

// Asset は永続化された資産レコードです。
// ID は表示用シンボルとは独立した安定識別子です。
type Asset struct {
	ID            string
	Symbol        string
	Name          string
	Category      Category
	MarketCapRank *int
	MarketData
	LastUpdated time.Time
}

// Quote is a normalized quote for one symbol, ready to be merged into the store.
type Quote struct {
	Symbol   string
	Name     string
	Category Category
	MarketData
}

// FailedSymbol records a symbol whose quote could not be fetched.
type FailedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}
