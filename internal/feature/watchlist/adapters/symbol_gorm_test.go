package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"market_backend/internal/feature/watchlist/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&SymbolModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedSymbol はテスト用の銘柄データをデータベースに作成します。
func seedSymbol(t *testing.T, db *gorm.DB, code, name string, isActive bool, sortKey int) *SymbolModel {
	t.Helper()

	m := &SymbolModel{Code: code, Name: name, IsActive: true, SortKey: sortKey}
	require.NoError(t, db.Create(m).Error, "failed to seed symbol")
	if !isActive {
		require.NoError(t, db.Model(m).Update("is_active", false).Error)
	}
	return m
}

// TestNewSymbolRepository はNewSymbolRepositoryコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewSymbolRepository(t *testing.T) {
	t.Parallel()

	repo := NewSymbolRepository(setupTestDB(t))
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

// TestSymbolGorm_ListActive はListActiveメソッドの各種シナリオをテーブル駆動テストで検証します。
func TestSymbolGorm_ListActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		setupFunc     func(t *testing.T, db *gorm.DB)
		expectedCodes []string
	}{
		{
			name: "success: returns active symbols sorted by sort_key",
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedSymbol(t, db, "BTC-USD", "Bitcoin", true, 2)
				seedSymbol(t, db, "AAPL", "Apple", true, 1)
				seedSymbol(t, db, "^GSPC", "S&P 500", true, 3)
			},
			expectedCodes: []string{"AAPL", "BTC-USD", "^GSPC"},
		},
		{
			name: "success: excludes inactive symbols",
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedSymbol(t, db, "AAPL", "Apple", true, 1)
				seedSymbol(t, db, "MSFT", "Microsoft", false, 2)
				seedSymbol(t, db, "GC=F", "Gold", true, 3)
			},
			expectedCodes: []string{"AAPL", "GC=F"},
		},
		{
			name:          "success: returns empty list when no symbols",
			expectedCodes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewSymbolRepository(db)
			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}

			symbols, err := repo.ListActive(context.Background())
			require.NoError(t, err)

			codes := make([]string, 0, len(symbols))
			for _, s := range symbols {
				codes = append(codes, s.Code)
				assert.True(t, s.IsActive)
			}
			assert.Equal(t, tt.expectedCodes, codes)

			active, err := repo.ListActiveCodes(context.Background())
			require.NoError(t, err)
			if len(tt.expectedCodes) == 0 {
				assert.Empty(t, active)
			} else {
				assert.Equal(t, tt.expectedCodes, active)
			}
		})
	}
}

// TestSymbolGorm_ListActive_FieldValues はListActiveが返す銘柄の全フィールド値が正しいことを検証します。
func TestSymbolGorm_ListActive_FieldValues(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)
	expected := seedSymbol(t, db, "EURUSD=X", "Euro / US Dollar", true, 42)

	symbols, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 1)

	s := symbols[0]
	assert.Equal(t, expected.ID, s.ID)
	assert.Equal(t, "EURUSD=X", s.Code)
	assert.Equal(t, "Euro / US Dollar", s.Name)
	assert.Equal(t, 42, s.SortKey)
	assert.False(t, s.UpdatedAt.IsZero(), "UpdatedAt should be set")
}

// TestSymbolGorm_Seed は既存コードを上書きせずに挿入することを検証します。
func TestSymbolGorm_Seed(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)
	seedSymbol(t, db, "AAPL", "Apple Inc.", true, 99)

	n, err := repo.Seed(context.Background(), []entity.Symbol{
		{Code: "AAPL", Name: "AAPL", IsActive: true, SortKey: 1},
		{Code: "MSFT", Name: "MSFT", IsActive: true, SortKey: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	symbols, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "MSFT", symbols[0].Code)
	assert.Equal(t, "Apple Inc.", symbols[1].Name, "existing row is untouched")

	n, err = repo.Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
