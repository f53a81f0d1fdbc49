package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"market_backend/internal/app/config"
	alertadapters "market_backend/internal/feature/alerts/adapters"
	alertusecase "market_backend/internal/feature/alerts/usecase"
	"market_backend/internal/feature/assets/domain/symbol"
	assetusecase "market_backend/internal/feature/assets/usecase"
	watchlistadapters "market_backend/internal/feature/watchlist/adapters"
	watchlistusecase "market_backend/internal/feature/watchlist/usecase"
)

// Usecases はサーバーとCLIが共有するユースケース一式です。
type Usecases struct {
	Classifier  *symbol.Classifier
	Formatter   *symbol.Formatter
	Watchlist   *watchlistusecase.WatchlistUsecase
	Refresh     *assetusecase.RefreshUsecase
	Market      *assetusecase.MarketUsecase
	Maintenance *assetusecase.MaintenanceUsecase
	Alerts      *alertusecase.AlertUsecase
}

// NewUsecases wires repositories, the quote provider and usecases together.
// rdb may be nil, in which case the asset store is read without a cache.
func NewUsecases(cfg config.Config, db *gorm.DB, rdb *redis.Client, provider assetusecase.QuoteProvider) *Usecases {
	tables := symbol.DefaultTables()
	classifier := symbol.NewClassifier(tables)
	formatter := symbol.NewFormatter(tables)

	assets, assetWrites := NewAssetRepositories(rdb, db, cfg.MarketCacheTTL)
	watchlist := watchlistusecase.NewWatchlistUsecase(watchlistadapters.NewSymbolRepository(db), classifier, formatter)

	return &Usecases{
		Classifier: classifier,
		Formatter:  formatter,
		Watchlist:  watchlist,
		Refresh: assetusecase.NewRefreshUsecase(
			watchlist,
			NewRefreshFetcher(provider, formatter),
			assetusecase.NewReconciler(assetWrites),
			classifier,
			formatter,
			cfg.RefreshBudget,
		),
		Market: assetusecase.NewMarketUsecase(
			assets,
			watchlist,
			NewLiveFetcher(provider, formatter, cfg.QuoteCacheTTL),
			classifier,
			formatter,
		),
		Maintenance: assetusecase.NewMaintenanceUsecase(assetWrites, classifier),
		Alerts: alertusecase.NewAlertUsecase(
			alertadapters.NewAlertRepository(db),
			assets,
			symbol.NewResolver(classifier, formatter),
		),
	}
}
