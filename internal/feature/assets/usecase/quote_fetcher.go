package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
	"market_backend/internal/platform/logger"
	"market_backend/internal/shared/ratelimiter"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 1000 * time.Millisecond
	defaultBatchSize   = 10
)

// QuoteProvider は外部の相場APIから1銘柄分の生データを取得します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
//
//go:generate mockgen -package=usecase_test -destination=mock_quote_provider_test.go -source=quote_fetcher.go QuoteProvider
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*entity.RawQuote, error)
}

// QuoteRequest は取得対象の銘柄とカテゴリの組です。
type QuoteRequest struct {
	Symbol   string
	Category entity.Category
}

// FetcherConfig はリトライとバッチの設定です。0 の項目はデフォルト値になります。
type FetcherConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	BatchSize   int
}

// QuoteFetcher はリトライ付きで相場を取得し、正規化された Quote に変換します。
type QuoteFetcher struct {
	provider  QuoteProvider
	formatter *symbol.Formatter
	pacer     ratelimiter.Pacer
	cfg       FetcherConfig
}

// NewQuoteFetcher は新しい QuoteFetcher を生成します。pacer が nil の場合、バッチ間で待機しません。
func NewQuoteFetcher(provider QuoteProvider, formatter *symbol.Formatter, pacer ratelimiter.Pacer, cfg FetcherConfig) *QuoteFetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	} else if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &QuoteFetcher{provider: provider, formatter: formatter, pacer: pacer, cfg: cfg}
}

// FetchQuote は1銘柄の相場を取得します。
// スキーマ検証エラーはリトライせず、それ以外のエラーは MaxAttempts 回まで RetryDelay 間隔で再試行します。
func (f *QuoteFetcher) FetchQuote(ctx context.Context, sym string, c entity.Category) (entity.Quote, error) {
	log := logger.FromContext(ctx)
	quoteSymbol := f.formatter.ToQuoteFormat(sym, c)

	// 固定間隔で MaxAttempts 回まで。ctx が終われば待機中でも打ち切る
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.cfg.RetryDelay), uint64(f.cfg.MaxAttempts-1)),
		ctx,
	)
	attempt := 0
	raw, err := backoff.RetryNotifyWithData(func() (*entity.RawQuote, error) {
		attempt++
		raw, err := f.provider.Quote(ctx, quoteSymbol)
		if err == nil && raw == nil {
			err = ErrSymbolNotFound
		}
		if errors.Is(err, ErrSchemaValidation) {
			return nil, backoff.Permanent(err)
		}
		return raw, err
	}, policy, func(err error, _ time.Duration) {
		log.Debug("retrying quote fetch", "symbol", quoteSymbol, "attempt", attempt, "error", err)
	})
	if err == nil {
		return f.toQuote(quoteSymbol, c, raw), nil
	}

	if errors.Is(err, ErrSchemaValidation) {
		log.Warn("quote schema validation failed; not retrying",
			"symbol", quoteSymbol, "kind", "schema_validation", "error", err)
	} else {
		log.Error("failed to fetch quote", "symbol", quoteSymbol, "category", c, "error", err)
	}
	return entity.Quote{}, fmt.Errorf("fetch %s: %w", quoteSymbol, err)
}

// FetchBatch は BatchSize 件ずつ並行に取得します。バッチ同士は順番に実行され、間に pacer の待機が入ります。
// 1銘柄の失敗はバッチを中断せず、failed に理由とともに記録されます。
func (f *QuoteFetcher) FetchBatch(ctx context.Context, reqs []QuoteRequest) ([]entity.Quote, []entity.FailedSymbol) {
	quotes := make([]entity.Quote, 0, len(reqs))
	var failed []entity.FailedSymbol

	type result struct {
		quote entity.Quote
		err   error
	}

	for start := 0; start < len(reqs); start += f.cfg.BatchSize {
		end := min(start+f.cfg.BatchSize, len(reqs))
		batch := reqs[start:end]

		if f.pacer != nil {
			if err := f.pacer.Wait(ctx); err != nil {
				for _, r := range reqs[start:] {
					failed = append(failed, entity.FailedSymbol{
						Symbol: f.formatter.ToQuoteFormat(r.Symbol, r.Category),
						Reason: err.Error(),
					})
				}
				break
			}
		}

		// 各 goroutine は自分のスロットにだけ書き込む
		results := make([]result, len(batch))
		var wg sync.WaitGroup
		for i, r := range batch {
			wg.Go(func() {
				q, err := f.FetchQuote(ctx, r.Symbol, r.Category)
				results[i] = result{quote: q, err: err}
			})
		}
		wg.Wait()

		for i, res := range results {
			if res.err != nil {
				failed = append(failed, entity.FailedSymbol{
					Symbol: f.formatter.ToQuoteFormat(batch[i].Symbol, batch[i].Category),
					Reason: res.err.Error(),
				})
				continue
			}
			quotes = append(quotes, res.quote)
		}
	}
	return quotes, failed
}

func (f *QuoteFetcher) toQuote(quoteSymbol string, c entity.Category, raw *entity.RawQuote) entity.Quote {
	return entity.Quote{
		Symbol:   quoteSymbol,
		Name:     f.formatter.DisplayName(quoteSymbol, c, raw.ShortName, raw.LongName),
		Category: c,
		MarketData: entity.MarketData{
			Price:            ResolvePrice(raw, c),
			Change:           num(raw.Change),
			ChangePercent:    num(raw.ChangePercent),
			Volume:           int64(num(raw.Volume)),
			MarketCap:        optional(raw.MarketCap),
			DayHigh:          num(raw.DayHigh),
			DayLow:           num(raw.DayLow),
			OpenPrice:        num(raw.Open),
			PreviousClose:    num(raw.PreviousClose),
			FiftyTwoWeekHigh: num(raw.FiftyTwoWeekHigh),
			FiftyTwoWeekLow:  num(raw.FiftyTwoWeekLow),
			AverageVolume:    int64(num(raw.AverageVolume)),
		},
	}
}

// ResolvePrice はカテゴリごとの優先順で価格フィールドを選びます。
// crypto/commodity は currentPrice, regularMarketPrice, ask, bid の順、それ以外は regularMarketPrice のみ。
// 正の値が無ければ 0（価格なし）を返します。
func ResolvePrice(raw *entity.RawQuote, c entity.Category) float64 {
	if raw == nil {
		return 0
	}
	var candidates []*float64
	switch c {
	case entity.CategoryCrypto, entity.CategoryCommodity:
		candidates = []*float64{raw.CurrentPrice, raw.RegularMarketPrice, raw.Ask, raw.Bid}
	default:
		candidates = []*float64{raw.RegularMarketPrice}
	}
	for _, p := range candidates {
		if v := num(p); v > 0 {
			return v
		}
	}
	return 0
}

func num(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}

func optional(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := *p
	return &v
}
