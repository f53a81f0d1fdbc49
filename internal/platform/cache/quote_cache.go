package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/usecase"
)

// QuoteCache はプロセス内の相場キャッシュです。TTL は呼び出し側が明示します。
type QuoteCache struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewQuoteCache は ttl で期限切れになる QuoteCache を生成します。期限切れのエントリは 2*ttl ごとに掃除されます。
// ttl が 0 以下ならキャッシュは無効で nil を返します（nil の QuoteCache は何も保持しません）。
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		return nil
	}
	return &QuoteCache{c: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// Get はキャッシュ済みの相場のコピーを返します。
func (q *QuoteCache) Get(symbol string) (*entity.RawQuote, bool) {
	if q == nil {
		return nil, false
	}
	v, ok := q.c.Get(quoteKey(symbol))
	if !ok {
		return nil, false
	}
	raw := v.(entity.RawQuote)
	return &raw, true
}

// Set は相場を保存します。
func (q *QuoteCache) Set(symbol string, raw *entity.RawQuote) {
	if q == nil || raw == nil {
		return
	}
	q.c.Set(quoteKey(symbol), *raw, q.ttl)
}

// Len returns the number of entries, expired or not.
func (q *QuoteCache) Len() int {
	if q == nil {
		return 0
	}
	return q.c.ItemCount()
}

func quoteKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CachingQuoteProvider decorates a QuoteProvider with a QuoteCache.
// Only successful responses are cached.
type CachingQuoteProvider struct {
	inner usecase.QuoteProvider
	cache *QuoteCache
}

var _ usecase.QuoteProvider = (*CachingQuoteProvider)(nil)

// NewCachingQuoteProvider は cache が nil の場合 inner をそのまま呼び出します。
func NewCachingQuoteProvider(inner usecase.QuoteProvider, cache *QuoteCache) *CachingQuoteProvider {
	return &CachingQuoteProvider{inner: inner, cache: cache}
}

// Quote returns the cached quote when present, otherwise asks the inner provider.
func (p *CachingQuoteProvider) Quote(ctx context.Context, symbol string) (*entity.RawQuote, error) {
	if p.cache == nil {
		return p.inner.Quote(ctx, symbol)
	}
	if raw, ok := p.cache.Get(symbol); ok {
		return raw, nil
	}
	raw, err := p.inner.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.cache.Set(symbol, raw)
	return raw, nil
}
