// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"market_backend/internal/feature/assets/domain/symbol"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/cache"
	"market_backend/internal/platform/externalapi/yahoo"
	infrahttp "market_backend/internal/platform/http"
	"market_backend/internal/shared/ratelimiter"
)

// batchInterval はバッチ間の最小間隔です。Yahoo のレート制限に合わせています。
const batchInterval = 100 * time.Millisecond

// NewYahooClient creates a Yahoo quote client with its own HTTP client and cookie jar.
func NewYahooClient() (*yahoo.Client, error) {
	cfg := yahoo.LoadConfig()
	return yahoo.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewRefreshFetcher は更新ジョブ用の QuoteFetcher を作成します。常に最新値を取得するためキャッシュを通しません。
func NewRefreshFetcher(provider usecase.QuoteProvider, formatter *symbol.Formatter) *usecase.QuoteFetcher {
	return usecase.NewQuoteFetcher(provider, formatter, ratelimiter.NewIntervalPacer(batchInterval), usecase.FetcherConfig{})
}

// NewLiveFetcher は読み取りAPI用の QuoteFetcher を作成します。ttl が 0 ならキャッシュしません。
func NewLiveFetcher(provider usecase.QuoteProvider, formatter *symbol.Formatter, ttl time.Duration) *usecase.QuoteFetcher {
	return usecase.NewQuoteFetcher(
		cache.NewCachingQuoteProvider(provider, cache.NewQuoteCache(ttl)),
		formatter,
		ratelimiter.NewIntervalPacer(batchInterval),
		usecase.FetcherConfig{},
	)
}
