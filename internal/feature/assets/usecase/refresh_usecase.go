package usecase

import (
	"context"
	"fmt"
	"time"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
	"market_backend/internal/platform/logger"
)

const defaultRefreshBudget = 60 * time.Second

// WatchlistReader は監視対象の銘柄コードを sort_key 順に返します。
type WatchlistReader interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// BatchFetcher fetches quotes for many symbols, isolating per-symbol failures.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, reqs []QuoteRequest) ([]entity.Quote, []entity.FailedSymbol)
}

// AssetReconciler merges quotes into the store.
type AssetReconciler interface {
	Reconcile(ctx context.Context, quotes []entity.Quote) (entity.ReconcileSummary, error)
}

// RefreshUsecase は監視銘柄の相場を取得して資産テーブルを更新するジョブです。
type RefreshUsecase struct {
	watchlist  WatchlistReader
	fetcher    BatchFetcher
	reconciler AssetReconciler
	classifier *symbol.Classifier
	formatter  *symbol.Formatter
	budget     time.Duration
}

// NewRefreshUsecase は新しい RefreshUsecase を生成します。budget が 0 以下なら 60 秒です。
func NewRefreshUsecase(
	watchlist WatchlistReader,
	fetcher BatchFetcher,
	reconciler AssetReconciler,
	classifier *symbol.Classifier,
	formatter *symbol.Formatter,
	budget time.Duration,
) *RefreshUsecase {
	if budget <= 0 {
		budget = defaultRefreshBudget
	}
	return &RefreshUsecase{
		watchlist:  watchlist,
		fetcher:    fetcher,
		reconciler: reconciler,
		classifier: classifier,
		formatter:  formatter,
		budget:     budget,
	}
}

// Run executes one refresh cycle within the configured budget.
//
// Categories are refreshed one after another, each with one batched fetch and
// one bulk upsert, so rows written before the budget runs out stay written.
// A store write failure ends the cycle with an error.
func (u *RefreshUsecase) Run(ctx context.Context) (entity.RefreshReport, error) {
	ctx, cancel := context.WithTimeout(ctx, u.budget)
	defer cancel()

	log := logger.FromContext(ctx)
	var report entity.RefreshReport

	codes, err := u.watchlist.ListActiveCodes(ctx)
	if err != nil {
		return report, fmt.Errorf("load watchlist: %w", err)
	}
	plan := u.plan(codes)

	fetched := 0
	for _, c := range entity.Categories {
		reqs := plan[c]
		if len(reqs) == 0 {
			continue
		}

		quotes, failed := u.fetcher.FetchBatch(ctx, reqs)
		report.FailedSymbols = append(report.FailedSymbols, failed...)
		fetched += len(quotes)
		if len(quotes) == 0 {
			log.Warn("no quotes fetched for category", "category", c, "failed", len(failed))
			continue
		}

		summary, err := u.reconciler.Reconcile(ctx, quotes)
		if err != nil {
			return report, fmt.Errorf("reconcile %s: %w", c, err)
		}
		report.Count += summary.Count
		report.Skipped = append(report.Skipped, summary.Skipped...)

		log.Info("category refreshed",
			"category", c,
			"requested", len(reqs),
			"inserted", summary.Inserted,
			"updated", summary.Updated,
			"skipped", len(summary.Skipped),
			"failed", len(failed),
		)
	}

	if len(codes) > 0 && fetched == 0 {
		return report, ErrNoQuotesFetched
	}
	return report, nil
}

// plan classifies and formats every watchlist code, dropping duplicates.
func (u *RefreshUsecase) plan(codes []string) map[entity.Category][]QuoteRequest {
	out := make(map[entity.Category][]QuoteRequest, len(entity.Categories))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if symbol.Clean(code) == "" {
			continue
		}
		c := u.classifier.Classify(code)
		qs := u.formatter.ToQuoteFormat(code, c)
		if _, ok := seen[qs]; ok {
			continue
		}
		seen[qs] = struct{}{}
		out[c] = append(out[c], QuoteRequest{Symbol: qs, Category: c})
	}
	return out
}
