// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"market_backend/internal/feature/watchlist/domain/entity"
	"market_backend/internal/feature/watchlist/usecase"
)

// SymbolModel is the watchlist_symbols table.
type SymbolModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	IsActive  bool      `gorm:"not null;index"`
	SortKey   int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SymbolModel) TableName() string {
	return "watchlist_symbols"
}

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Symbol{
			ID:        m.ID,
			Code:      m.Code,
			Name:      m.Name,
			IsActive:  m.IsActive,
			SortKey:   m.SortKey,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("id ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Seed は銘柄を挿入します。既に存在する code は変更しません。挿入件数を返します。
func (r *symbolGorm) Seed(ctx context.Context, symbols []entity.Symbol) (int64, error) {
	if len(symbols) == 0 {
		return 0, nil
	}
	rows := make([]SymbolModel, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, SymbolModel{
			Code:     s.Code,
			Name:     s.Name,
			IsActive: s.IsActive,
			SortKey:  s.SortKey,
		})
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}
