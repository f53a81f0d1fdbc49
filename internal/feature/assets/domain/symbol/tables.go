// Package symbol converts between the internal asset symbol, the quote vendor's
// symbol format and the charting widget's symbol format.
package symbol

import "market_backend/internal/feature/assets/domain/entity"

// Tables is the static data the Classifier and Formatter work from.
// Extending coverage means editing data here, not adding branches.
type Tables struct {
	Funds             []string
	ForexPrefixes     []string
	CryptoPrefixes    []string
	CommodityPrefixes []string

	// ChartOverrides maps quote-format symbols to charting-venue tickers, per category.
	ChartOverrides map[entity.Category]map[string]string
	// CommodityNames maps futures symbols to display names.
	CommodityNames map[string]string
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Funds: []string{
			"SPY", "QQQ", "IWM", "EFA", "VTI", "AGG", "VWO", "BND", "VEA", "GLD",
			"IVV", "VOO", "DIA", "XLK", "XLF", "XLE", "XLV", "XLI", "XLP", "XLY",
			"XLB", "XLU", "SLV", "USO", "UNG", "ARKK", "ARKW",
		},
		ForexPrefixes: []string{
			"EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "NZD",
			"INR", "SGD", "HKD", "MXN", "BRL", "ZAR", "RUB",
		},
		CryptoPrefixes: []string{
			"BTC", "ETH", "USDT", "BNB", "XRP", "ADA", "DOGE",
			"SOL", "DOT", "AVAX", "MATIC", "LINK", "UNI", "SHIB",
		},
		CommodityPrefixes: []string{
			"GC", "SI", "CL", "NG", "ZC", "HG", "PA",
			"PL", "ZS", "KC", "CT", "LBS", "CC", "SB",
		},
		ChartOverrides: map[entity.Category]map[string]string{
			entity.CategoryIndex: {
				"^GSPC":  "SPX",
				"^DJI":   "DJI",
				"^IXIC":  "IXIC",
				"^FTSE":  "UKX",
				"^N225":  "JP225",
				"^GDAXI": "DEU40",
				"^FCHI":  "FRA40",
				"^HSI":   "HSI",
				"^AXJO":  "AUS200",
			},
			entity.CategoryCommodity: {
				"GC=F": "XAUUSD",
				"SI=F": "XAGUSD",
				"CL=F": "USOIL",
				"NG=F": "NATURALGAS",
				"ZC=F": "CORN",
				"HG=F": "COPPER",
				"PA=F": "XPDUSD",
				"PL=F": "XPTUSD",
				"ZS=F": "SOYBEAN",
				"KC=F": "COFFEE",
			},
			entity.CategoryForex: {
				"EUR=X": "EURUSD",
				"GBP=X": "GBPUSD",
				"JPY=X": "USDJPY",
				"AUD=X": "AUDUSD",
				"CAD=X": "USDCAD",
				"CHF=X": "USDCHF",
				"CNY=X": "USDCNH",
				"NZD=X": "USDNZD",
				"INR=X": "USDINR",
			},
			entity.CategoryCrypto: {
				"BTC-USD":  "BTCUSD",
				"ETH-USD":  "ETHUSD",
				"USDT-USD": "USDTUSD",
				"BNB-USD":  "BNBUSD",
				"XRP-USD":  "XRPUSD",
				"ADA-USD":  "ADAUSD",
				"DOGE-USD": "DOGEUSD",
				"SOL-USD":  "SOLUSD",
			},
		},
		CommodityNames: map[string]string{
			"GC=F":  "Gold",
			"SI=F":  "Silver",
			"CL=F":  "Crude Oil",
			"NG=F":  "Natural Gas",
			"HG=F":  "Copper",
			"ZC=F":  "Corn",
			"ZW=F":  "Wheat",
			"ZS=F":  "Soybeans",
			"PA=F":  "Palladium",
			"PL=F":  "Platinum",
			"KC=F":  "Coffee",
			"CC=F":  "Cocoa",
			"CT=F":  "Cotton",
			"LBS=F": "Lumber",
			"SB=F":  "Sugar",
		},
	}
}
