package symbol

import (
	"strings"

	"market_backend/internal/feature/assets/domain/entity"
)

// Classifier determines an asset category from a ticker string alone.
// Unknown tickers fall back to stock; classification never fails.
type Classifier struct {
	funds             map[string]struct{}
	forexPrefixes     []string
	cryptoPrefixes    []string
	commodityPrefixes []string
}

// NewClassifier builds a Classifier from t.
func NewClassifier(t Tables) *Classifier {
	funds := make(map[string]struct{}, len(t.Funds))
	for _, f := range t.Funds {
		funds[strings.ToUpper(f)] = struct{}{}
	}
	return &Classifier{
		funds:             funds,
		forexPrefixes:     upperAll(t.ForexPrefixes),
		cryptoPrefixes:    upperAll(t.CryptoPrefixes),
		commodityPrefixes: upperAll(t.CommodityPrefixes),
	}
}

// Classify applies the rules in precedence order; the first match wins.
func (c *Classifier) Classify(raw string) entity.Category {
	s := strings.ToUpper(strings.TrimSpace(raw))

	if _, ok := c.funds[s]; ok {
		return entity.CategoryFund
	}
	if strings.HasSuffix(s, suffixForex) || hasAnyPrefix(s, c.forexPrefixes) {
		return entity.CategoryForex
	}
	if strings.HasSuffix(s, suffixCrypto) || hasAnyPrefix(s, c.cryptoPrefixes) {
		return entity.CategoryCrypto
	}
	if strings.HasPrefix(s, prefixIndex) {
		return entity.CategoryIndex
	}
	if strings.Contains(s, suffixCommodity) || hasAnyPrefix(s, c.commodityPrefixes) {
		return entity.CategoryCommodity
	}
	return entity.CategoryStock
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
