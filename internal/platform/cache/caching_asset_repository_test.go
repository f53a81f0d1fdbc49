package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/feature/assets/domain/entity"
)

// mockAssetRepository はテスト用のAssetRepositoryモック実装です。
type mockAssetRepository struct {
	listAllFn        func(ctx context.Context) ([]entity.Asset, error)
	findBySymbolsFn  func(ctx context.Context, symbols []string) ([]entity.Asset, error)
	upsertBatchFn    func(ctx context.Context, assets []entity.Asset) error
	deleteByIDsFn    func(ctx context.Context, ids []string) (int64, error)
	deleteBySymbolFn func(ctx context.Context, symbol string) (int64, error)
}

func (m *mockAssetRepository) ListAll(ctx context.Context) ([]entity.Asset, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockAssetRepository) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error) {
	if m.findBySymbolsFn != nil {
		return m.findBySymbolsFn(ctx, symbols)
	}
	return nil, nil
}

func (m *mockAssetRepository) UpsertBatch(ctx context.Context, assets []entity.Asset) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, assets)
	}
	return nil
}

func (m *mockAssetRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if m.deleteByIDsFn != nil {
		return m.deleteByIDsFn(ctx, ids)
	}
	return 0, nil
}

func (m *mockAssetRepository) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	if m.deleteBySymbolFn != nil {
		return m.deleteBySymbolFn(ctx, symbol)
	}
	return 0, nil
}

var sampleAssets = []entity.Asset{
	{ID: "aapl", Symbol: "AAPL", Name: "Apple Inc.", Category: entity.CategoryStock, MarketData: entity.MarketData{Price: 190.5}},
	{ID: "btc", Symbol: "BTC-USD", Name: "Bitcoin USD", Category: entity.CategoryCrypto, MarketData: entity.MarketData{Price: 65000}},
}

// TestNewCachingAssetRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingAssetRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{name: "default values when zero/empty", expectedTTL: 5 * time.Minute, expectedNamespace: "assets"},
		{name: "negative ttl uses default", ttl: -time.Minute, expectedTTL: 5 * time.Minute, expectedNamespace: "assets"},
		{name: "custom values preserved", ttl: 30 * time.Second, namespace: "market", expectedTTL: 30 * time.Second, expectedNamespace: "market"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingAssetRepository(nil, tt.ttl, &mockAssetRepository{}, tt.namespace)
			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingAssetRepository_ListAll_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingAssetRepository_ListAll_NilRedis(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockAssetRepository{listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
		calls++
		return sampleAssets, nil
	}}
	repo := NewCachingAssetRepository(nil, time.Minute, inner, "")

	for range 2 {
		got, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, 2, calls)
}

// TestCachingAssetRepository_ListAll_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingAssetRepository_ListAll_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(sampleAssets)
	mock.ExpectGet("assets:all").SetVal(string(cached))

	inner := &mockAssetRepository{listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
		t.Error("inner repository should not be called on cache hit")
		return nil, nil
	}}

	got, err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleAssets, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_ListAll_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingAssetRepository_ListAll_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleAssets)
	mock.ExpectGet("assets:all").RedisNil()
	mock.ExpectSet("assets:all", expected, time.Minute).SetVal("OK")

	inner := &mockAssetRepository{listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
		return sampleAssets, nil
	}}

	got, err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_ListAll_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingAssetRepository_ListAll_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleAssets)
	mock.ExpectGet("assets:all").SetVal("invalid json")
	mock.ExpectDel("assets:all").SetVal(1)
	mock.ExpectSet("assets:all", expected, time.Minute).SetVal("OK")

	inner := &mockAssetRepository{listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
		return sampleAssets, nil
	}}

	got, err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_ListAll_InnerError は内部リポジトリのエラーが伝播し、キャッシュに保存されないことを検証します。
func TestCachingAssetRepository_ListAll_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	boom := errors.New("database error")
	mock.ExpectGet("assets:all").RedisNil()

	inner := &mockAssetRepository{listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
		return nil, boom
	}}

	_, err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").ListAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_FindBySymbols_KeyIsOrderIndependent は順序違いの同じ問い合わせが同じキーになることを検証します。
func TestCachingAssetRepository_FindBySymbols_KeyIsOrderIndependent(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(sampleAssets)
	mock.ExpectGet("assets:symbols:AAPL,BTC-USD").SetVal(string(cached))
	mock.ExpectGet("assets:symbols:AAPL,BTC-USD").SetVal(string(cached))

	repo := NewCachingAssetRepository(rdb, time.Minute, &mockAssetRepository{}, "assets")

	_, err := repo.FindBySymbols(context.Background(), []string{"BTC-USD", "AAPL"})
	require.NoError(t, err)
	_, err = repo.FindBySymbols(context.Background(), []string{"AAPL", "BTC-USD"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_UpsertBatch_Invalidates は書き込み後に名前空間のキーが削除されることを検証します。
func TestCachingAssetRepository_UpsertBatch_Invalidates(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "assets:*", 200).SetVal([]string{"assets:all", "assets:symbols:AAPL"}, 0)
	mock.ExpectDel("assets:all", "assets:symbols:AAPL").SetVal(2)

	innerCalled := false
	inner := &mockAssetRepository{upsertBatchFn: func(ctx context.Context, assets []entity.Asset) error {
		innerCalled = true
		return nil
	}}

	err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").UpsertBatch(context.Background(), sampleAssets)
	require.NoError(t, err)
	assert.True(t, innerCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_UpsertBatch_InvalidationFailureIsIgnored はキャッシュ削除の失敗が書き込み結果に影響しないことを検証します。
func TestCachingAssetRepository_UpsertBatch_InvalidationFailureIsIgnored(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "assets:*", 200).SetErr(errors.New("redis down"))

	err := NewCachingAssetRepository(rdb, time.Minute, &mockAssetRepository{}, "assets").UpsertBatch(context.Background(), sampleAssets)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_UpsertBatch_InnerError は内部エラー時にキャッシュを触らないことを検証します。
func TestCachingAssetRepository_UpsertBatch_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	boom := errors.New("upsert error")
	inner := &mockAssetRepository{upsertBatchFn: func(ctx context.Context, assets []entity.Asset) error {
		return boom
	}}

	err := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").UpsertBatch(context.Background(), sampleAssets)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAssetRepository_Deletes は削除件数が0のときは無効化しないことを検証します。
func TestCachingAssetRepository_Deletes(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockAssetRepository{
		deleteByIDsFn: func(ctx context.Context, ids []string) (int64, error) {
			return int64(len(ids)), nil
		},
		deleteBySymbolFn: func(ctx context.Context, symbol string) (int64, error) {
			return 0, nil
		},
	}
	repo := NewCachingAssetRepository(rdb, time.Minute, inner, "assets")

	mock.ExpectScan(0, "assets:*", 200).SetVal([]string{"assets:all"}, 0)
	mock.ExpectDel("assets:all").SetVal(1)

	n, err := repo.DeleteByIDs(context.Background(), []string{"btc-bare"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteBySymbol(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestWriteThroughAssetRepository_ReadsBypassCache は古いキャッシュがあっても読み取りが inner に届くことを検証します。
func TestWriteThroughAssetRepository_ReadsBypassCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockAssetRepository{
		listAllFn: func(ctx context.Context) ([]entity.Asset, error) {
			return sampleAssets, nil
		},
		findBySymbolsFn: func(ctx context.Context, symbols []string) ([]entity.Asset, error) {
			return sampleAssets[1:], nil
		},
	}
	repo := NewCachingAssetRepository(rdb, time.Minute, inner, "assets").WriteThrough()

	// Redis には一切アクセスしない
	rows, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleAssets, rows)

	rows, err = repo.FindBySymbols(context.Background(), []string{"BTC-USD"})
	require.NoError(t, err)
	assert.Equal(t, sampleAssets[1:], rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestWriteThroughAssetRepository_WritesInvalidate は書き込みが名前空間を無効化することを検証します。
func TestWriteThroughAssetRepository_WritesInvalidate(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "assets:*", 200).SetVal([]string{"assets:all"}, 0)
	mock.ExpectDel("assets:all").SetVal(1)

	repo := NewCachingAssetRepository(rdb, time.Minute, &mockAssetRepository{}, "assets").WriteThrough()
	require.NoError(t, repo.UpsertBatch(context.Background(), sampleAssets))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"BRK A", "BRK_A"},
		{"key:value", "key_value"},
		{"a,b", "a_b"},
		{"GC=F", "GC=F"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, safe(tt.input))
		})
	}
}
