// Package usecase implements the business logic for the watchlist.
package usecase

import (
	"context"

	"market_backend/internal/feature/assets/domain/symbol"
	"market_backend/internal/feature/watchlist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for the watchlist.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Seed(ctx context.Context, symbols []entity.Symbol) (int64, error)
}

// WatchlistUsecase provides business logic for watchlist operations.
type WatchlistUsecase struct {
	repo       SymbolRepository
	classifier *symbol.Classifier
	formatter  *symbol.Formatter
}

// NewWatchlistUsecase creates a new WatchlistUsecase with the given repository.
func NewWatchlistUsecase(r SymbolRepository, classifier *symbol.Classifier, formatter *symbol.Formatter) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r, classifier: classifier, formatter: formatter}
}

// ListActiveSymbols は有効な銘柄をカテゴリと各表記に解決して返します。
func (u *WatchlistUsecase) ListActiveSymbols(ctx context.Context) ([]entity.ListedSymbol, error) {
	symbols, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.ListedSymbol, 0, len(symbols))
	for _, s := range symbols {
		c := u.classifier.Classify(s.Code)
		qs := u.formatter.ToQuoteFormat(s.Code, c)
		out = append(out, entity.ListedSymbol{
			Symbol:      s,
			Category:    c,
			QuoteSymbol: qs,
			ChartSymbol: u.formatter.ToChartFormat(qs, c),
		})
	}
	return out, nil
}

// ListActiveCodes returns the raw codes of every active symbol in sort order.
func (u *WatchlistUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// SeedDefaults は既定の監視銘柄を登録します。登録済みのコードはそのままです。
func (u *WatchlistUsecase) SeedDefaults(ctx context.Context) (int64, error) {
	return u.repo.Seed(ctx, DefaultSymbols())
}

// DefaultSymbols は既定の監視銘柄を sort_key 付きで返します。
func DefaultSymbols() []entity.Symbol {
	out := make([]entity.Symbol, 0, 105)
	for _, group := range defaultWatchlist {
		for _, code := range group {
			out = append(out, entity.Symbol{
				Code:     code,
				Name:     code,
				IsActive: true,
				SortKey:  len(out) + 1,
			})
		}
	}
	return out
}

// カテゴリ順: stock, index, commodity, crypto, forex, fund
var defaultWatchlist = [][]string{
	{
		"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "JPM", "V", "WMT",
		"JNJ", "MA", "PG", "HD", "BAC", "DIS", "NFLX", "ADBE", "PYPL", "INTC",
		"CSCO", "PFE", "PEP", "TMO", "ABT",
	},
	{
		"^GSPC", "^DJI", "^IXIC", "^FTSE", "^N225", "^HSI", "^STOXX50E", "^AXJO",
		"^BSESN", "^RUT", "^VIX", "^TNX", "^TYX", "^FCHI", "^GDAXI",
	},
	{
		"GC=F", "SI=F", "CL=F", "NG=F", "HG=F", "ZC=F", "ZW=F", "ZS=F", "PA=F",
		"PL=F", "KC=F", "CC=F", "CT=F", "LBS=F", "SB=F",
	},
	{
		"BTC-USD", "ETH-USD", "BNB-USD", "SOL-USD", "XRP-USD", "USDC-USD", "USDT-USD",
		"ADA-USD", "AVAX-USD", "DOGE-USD", "DOT-USD", "LINK-USD", "MATIC-USD", "SHIB-USD",
		"TRX-USD", "UNI-USD", "WBTC-USD", "LTC-USD", "ATOM-USD", "XLM-USD",
	},
	{
		"EURUSD=X", "GBPUSD=X", "USDJPY=X", "AUDUSD=X", "USDCAD=X", "USDCHF=X",
		"NZDUSD=X", "EURGBP=X", "EURJPY=X", "GBPJPY=X", "EURCAD=X", "AUDJPY=X",
		"AUDNZD=X", "CADJPY=X", "EURAUD=X",
	},
	{
		"SPY", "QQQ", "DIA", "IWM", "VTI", "VOO", "VEA", "VWO", "BND", "GLD",
		"SLV", "USO", "UNG", "ARKK", "ARKW",
	},
}
