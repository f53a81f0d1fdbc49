package symbol

import (
	"strings"

	"market_backend/internal/feature/assets/domain/entity"
)

const (
	suffixForex     = "=X"
	suffixCrypto    = "-USD"
	suffixCommodity = "=F"
	prefixIndex     = "^"

	chartCryptoVenue = "BINANCE:"
	chartCryptoQuote = "USDT"
)

var decorations = []string{suffixCrypto, suffixForex, suffixCommodity}

// Clean strips every vendor decoration: leading "^" and trailing "-USD", "=X", "=F".
// The result is upper-cased and is the grouping key for deduplication.
func Clean(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimLeft(s, prefixIndex)
	for {
		trimmed := false
		for _, d := range decorations {
			if strings.HasSuffix(s, d) {
				s = strings.TrimSuffix(s, d)
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}

// IsDecorated reports whether s carries a recognized vendor suffix or the index prefix.
func IsDecorated(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.HasPrefix(s, prefixIndex) {
		return true
	}
	for _, d := range decorations {
		if strings.HasSuffix(s, d) {
			return true
		}
	}
	return false
}

// Formatter produces quote-vendor and charting-widget symbols.
type Formatter struct {
	chartOverrides map[entity.Category]map[string]string
	commodityNames map[string]string
}

// NewFormatter builds a Formatter over the lookup maps in t.
func NewFormatter(t Tables) *Formatter {
	return &Formatter{
		chartOverrides: t.ChartOverrides,
		commodityNames: t.CommodityNames,
	}
}

// ToQuoteFormat returns the vendor quote symbol for s in category c.
// Existing decoration is stripped first, so repeated application is a no-op.
func (f *Formatter) ToQuoteFormat(s string, c entity.Category) string {
	clean := Clean(s)
	switch c {
	case entity.CategoryForex:
		return clean + suffixForex
	case entity.CategoryCrypto:
		return clean + suffixCrypto
	case entity.CategoryCommodity:
		return clean + suffixCommodity
	case entity.CategoryIndex:
		return prefixIndex + clean
	default:
		return clean
	}
}

// ToChartFormat maps a quote-format symbol to the charting widget's ticker.
func (f *Formatter) ToChartFormat(quoteSymbol string, c entity.Category) string {
	s := strings.ToUpper(strings.TrimSpace(quoteSymbol))
	if m, ok := f.chartOverrides[c]; ok {
		if v, ok := m[s]; ok {
			return v
		}
	}
	switch c {
	case entity.CategoryForex:
		return strings.TrimSuffix(s, suffixForex)
	case entity.CategoryCrypto:
		return chartCryptoVenue + strings.TrimSuffix(s, suffixCrypto) + chartCryptoQuote
	default:
		return s
	}
}

// DisplayName picks the name shown for an asset. Futures names come from the
// static table because the vendor's name fields are unreliable for them.
func (f *Formatter) DisplayName(quoteSymbol string, c entity.Category, shortName, longName string) string {
	if c == entity.CategoryCommodity {
		if n, ok := f.commodityNames[strings.ToUpper(quoteSymbol)]; ok {
			return n
		}
	}
	if n := strings.TrimSpace(shortName); n != "" {
		return n
	}
	if n := strings.TrimSpace(longName); n != "" {
		return n
	}
	return quoteSymbol
}

// AssetID returns the stable id minted for a symbol seen for the first time:
// the lower-cased clean symbol, or the vendor symbol itself for commodities.
func AssetID(quoteSymbol string, c entity.Category) string {
	if c == entity.CategoryCommodity {
		return strings.ToUpper(strings.TrimSpace(quoteSymbol))
	}
	return strings.ToLower(Clean(quoteSymbol))
}

// Resolver maps free-form user input ("btc", "eurusd") to the quote symbol
// an asset is stored under.
type Resolver struct {
	classifier *Classifier
	formatter  *Formatter
}

// NewResolver builds a Resolver from an existing classifier and formatter.
func NewResolver(c *Classifier, f *Formatter) *Resolver {
	return &Resolver{classifier: c, formatter: f}
}

// Resolve classifies s and returns its quote-format symbol.
func (r *Resolver) Resolve(s string) string {
	return r.formatter.ToQuoteFormat(s, r.classifier.Classify(s))
}
