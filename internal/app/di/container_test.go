package di

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"market_backend/internal/app/config"
	assetadapters "market_backend/internal/feature/assets/adapters"
	"market_backend/internal/feature/assets/domain/entity"
	assetusecase "market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/cache"
	platformdb "market_backend/internal/platform/db"
)

type fixedProvider struct{}

func (fixedProvider) Quote(ctx context.Context, symbol string) (*entity.RawQuote, error) {
	price := 100.0
	return &entity.RawQuote{Symbol: symbol, ShortName: symbol, RegularMarketPrice: &price}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, platformdb.Migrate(db))
	return db
}

func TestNewAssetRepositories_RedisOptional(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	reads, writes := NewAssetRepositories(nil, db, time.Minute)
	_, isCached := reads.(*cache.CachingAssetRepository)
	assert.False(t, isCached)
	assert.Same(t, reads, writes)

	rdb, _ := redismock.NewClientMock()
	reads, writes = NewAssetRepositories(rdb, db, time.Minute)
	_, isCached = reads.(*cache.CachingAssetRepository)
	assert.True(t, isCached)
	_, isWriteThrough := writes.(*cache.WriteThroughAssetRepository)
	assert.True(t, isWriteThrough)
}

// TestNewAssetRepositories_ReconcileIgnoresStaleCache は Redis に古いスナップショットが残っていても
// reconcile がDB上の既存 id を使うことを検証します。
func TestNewAssetRepositories_ReconcileIgnoresStaleCache(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, assetadapters.NewAssetRepository(db).UpsertBatch(ctx, []entity.Asset{{
		ID: "legacy-btc", Symbol: "BTC-USD", Name: "Bitcoin", Category: entity.CategoryCrypto,
		MarketData: entity.MarketData{Price: 50}, LastUpdated: time.Now().UTC(),
	}}))

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	reads, writes := NewAssetRepositories(rdb, db, time.Minute)

	// 読み取り側は古いキャッシュを返す
	mock.ExpectGet("assets:all").SetVal("[]")
	stale, err := reads.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stale)

	mock.ExpectScan(0, "assets:*", 200).SetVal([]string{"assets:all"}, 0)
	mock.ExpectDel("assets:all").SetVal(1)

	summary, err := assetusecase.NewReconciler(writes).Reconcile(ctx, []entity.Quote{{
		Symbol: "BTC-USD", Name: "Bitcoin USD", Category: entity.CategoryCrypto,
		MarketData: entity.MarketData{Price: 60},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Inserted)

	rows, err := assetadapters.NewAssetRepository(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "legacy-btc", rows[0].ID)
	assert.Equal(t, 60.0, rows[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestNewUsecases_RefreshThenRead は配線全体を SQLite 上で通します。
func TestNewUsecases_RefreshThenRead(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	cfg := config.Config{RefreshBudget: 5 * time.Second}
	uc := NewUsecases(cfg, db, nil, fixedProvider{})
	ctx := context.Background()

	n, err := uc.Watchlist.SeedDefaults(ctx)
	require.NoError(t, err)
	require.Positive(t, n)

	report, err := uc.Refresh.Run(ctx)
	require.NoError(t, err)
	assert.Positive(t, report.Count)
	assert.Empty(t, report.FailedSymbols)

	view, err := uc.Market.GetMarket(ctx)
	require.NoError(t, err)
	for _, c := range entity.Categories {
		for _, it := range view.Groups[c] {
			assert.False(t, it.Error, it.Symbol)
		}
	}

	plan, err := uc.Maintenance.PlanCleanup(ctx)
	require.NoError(t, err)
	assert.Empty(t, plan.Delete)
}
