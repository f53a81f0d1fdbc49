package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
	"market_backend/internal/platform/logger"
)

// AssetReader is the read side of the asset store.
type AssetReader interface {
	ListAll(ctx context.Context) ([]entity.Asset, error)
}

// QuoteSource fetches live quotes on demand.
type QuoteSource interface {
	FetchQuote(ctx context.Context, sym string, c entity.Category) (entity.Quote, error)
	FetchBatch(ctx context.Context, reqs []QuoteRequest) ([]entity.Quote, []entity.FailedSymbol)
}

// MarketUsecase は UI 向けの読み取り面です。データが無い銘柄も error フラグ付きのプレースホルダとして必ず返します。
type MarketUsecase struct {
	assets     AssetReader
	watchlist  WatchlistReader
	quotes     QuoteSource
	classifier *symbol.Classifier
	formatter  *symbol.Formatter
	now        func() time.Time
}

// NewMarketUsecase は新しい MarketUsecase を生成します。
func NewMarketUsecase(
	assets AssetReader,
	watchlist WatchlistReader,
	quotes QuoteSource,
	classifier *symbol.Classifier,
	formatter *symbol.Formatter,
) *MarketUsecase {
	return &MarketUsecase{
		assets:     assets,
		watchlist:  watchlist,
		quotes:     quotes,
		classifier: classifier,
		formatter:  formatter,
		now:        time.Now,
	}
}

// GetMarket は保存済みの資産をカテゴリ別に返します。
// 監視銘柄のうち未保存のものはプレースホルダになります。ストアが読めない場合は全件プレースホルダで返します。
func (u *MarketUsecase) GetMarket(ctx context.Context) (entity.MarketView, error) {
	codes, err := u.watchlist.ListActiveCodes(ctx)
	if err != nil {
		return entity.MarketView{}, fmt.Errorf("load watchlist: %w", err)
	}
	reqs := u.requests(codes, "")

	view := entity.MarketView{Groups: newGroups()}
	rows, err := u.assets.ListAll(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to read assets; serving placeholders", "error", err)
		view.Degraded = true
		rows = nil
	}

	present := make(map[string]struct{}, len(rows))
	for _, a := range rows {
		c := a.Category
		if !c.Valid() {
			c = u.classifier.Classify(a.Symbol)
			a.Category = c
		}
		present[strings.ToUpper(a.Symbol)] = struct{}{}
		view.Groups[c] = append(view.Groups[c], entity.MarketItem{
			Asset:       a,
			ChartSymbol: u.formatter.ToChartFormat(a.Symbol, c),
		})
		if a.LastUpdated.After(view.LastUpdated) {
			view.LastUpdated = a.LastUpdated
		}
	}

	for _, r := range reqs {
		if _, ok := present[r.Symbol]; ok {
			continue
		}
		view.Groups[r.Category] = append(view.Groups[r.Category], u.placeholder(r, "no data"))
	}

	sortByWatchlist(view.Groups, reqs)
	return view, nil
}

// GetLive は監視銘柄の相場を外部APIから直接取得します。category が空なら全カテゴリが対象です。
func (u *MarketUsecase) GetLive(ctx context.Context, category string) (entity.MarketView, error) {
	c := entity.Category(strings.ToLower(strings.TrimSpace(category)))
	if c != "" && !c.Valid() {
		return entity.MarketView{}, ErrInvalidCategory
	}
	codes, err := u.watchlist.ListActiveCodes(ctx)
	if err != nil {
		return entity.MarketView{}, fmt.Errorf("load watchlist: %w", err)
	}
	reqs := u.requests(codes, c)

	quotes, failed := u.quotes.FetchBatch(ctx, reqs)
	now := u.now().UTC()

	view := entity.MarketView{Groups: newGroups(), LastUpdated: now, FailedSymbols: failed}
	for _, q := range quotes {
		view.Groups[q.Category] = append(view.Groups[q.Category], u.liveItem(q, now))
	}
	byCategory := make(map[string]entity.Category, len(reqs))
	for _, r := range reqs {
		byCategory[r.Symbol] = r.Category
	}
	for _, f := range failed {
		r := QuoteRequest{Symbol: f.Symbol, Category: byCategory[f.Symbol]}
		view.Groups[r.Category] = append(view.Groups[r.Category], u.placeholder(r, f.Reason))
	}

	sortByWatchlist(view.Groups, reqs)
	return view, nil
}

// GetQuote は1銘柄の相場を取得します。取得に失敗した場合もエラーにせずプレースホルダを返します。
func (u *MarketUsecase) GetQuote(ctx context.Context, sym, category string) (entity.MarketItem, error) {
	if symbol.Clean(sym) == "" {
		return entity.MarketItem{}, ErrSymbolRequired
	}
	c := entity.Category(strings.ToLower(strings.TrimSpace(category)))
	if c == "" {
		c = u.classifier.Classify(sym)
	}
	if !c.Valid() {
		return entity.MarketItem{}, ErrInvalidCategory
	}

	q, err := u.quotes.FetchQuote(ctx, sym, c)
	if err != nil {
		r := QuoteRequest{Symbol: u.formatter.ToQuoteFormat(sym, c), Category: c}
		return u.placeholder(r, err.Error()), nil
	}
	return u.liveItem(q, u.now().UTC()), nil
}

func (u *MarketUsecase) requests(codes []string, only entity.Category) []QuoteRequest {
	reqs := make([]QuoteRequest, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if symbol.Clean(code) == "" {
			continue
		}
		c := u.classifier.Classify(code)
		if only != "" && c != only {
			continue
		}
		qs := u.formatter.ToQuoteFormat(code, c)
		if _, ok := seen[qs]; ok {
			continue
		}
		seen[qs] = struct{}{}
		reqs = append(reqs, QuoteRequest{Symbol: qs, Category: c})
	}
	return reqs
}

func (u *MarketUsecase) liveItem(q entity.Quote, at time.Time) entity.MarketItem {
	return entity.MarketItem{
		Asset: entity.Asset{
			ID:          symbol.AssetID(q.Symbol, q.Category),
			Symbol:      q.Symbol,
			Name:        q.Name,
			Category:    q.Category,
			MarketData:  q.MarketData,
			LastUpdated: at,
		},
		ChartSymbol: u.formatter.ToChartFormat(q.Symbol, q.Category),
	}
}

func (u *MarketUsecase) placeholder(r QuoteRequest, reason string) entity.MarketItem {
	return entity.MarketItem{
		Asset: entity.Asset{
			ID:       symbol.AssetID(r.Symbol, r.Category),
			Symbol:   r.Symbol,
			Name:     u.formatter.DisplayName(r.Symbol, r.Category, "", ""),
			Category: r.Category,
		},
		ChartSymbol: u.formatter.ToChartFormat(r.Symbol, r.Category),
		Error:       true,
		ErrorReason: reason,
	}
}

func newGroups() map[entity.Category][]entity.MarketItem {
	g := make(map[entity.Category][]entity.MarketItem, len(entity.Categories))
	for _, c := range entity.Categories {
		g[c] = []entity.MarketItem{}
	}
	return g
}

// sortByWatchlist orders each group by watchlist position; rows not on the
// watchlist follow, sorted by symbol.
func sortByWatchlist(groups map[entity.Category][]entity.MarketItem, reqs []QuoteRequest) {
	pos := make(map[string]int, len(reqs))
	for i, r := range reqs {
		pos[r.Symbol] = i
	}
	rank := func(it entity.MarketItem) int {
		if p, ok := pos[strings.ToUpper(it.Symbol)]; ok {
			return p
		}
		return len(reqs)
	}
	for c := range groups {
		slices.SortStableFunc(groups[c], func(a, b entity.MarketItem) int {
			if r := cmp.Compare(rank(a), rank(b)); r != 0 {
				return r
			}
			return cmp.Compare(a.Symbol, b.Symbol)
		})
	}
}
