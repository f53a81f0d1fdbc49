// Package adapters はassetsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/usecase"
)

const pgUniqueViolation = "23505"

// upsertColumns は衝突時に上書きする列です。id と market_cap_rank は保持されます。
var upsertColumns = []string{
	"symbol", "name", "category",
	"price", "change", "change_percent", "volume", "market_cap",
	"day_high", "day_low", "open_price", "previous_close",
	"fifty_two_week_high", "fifty_two_week_low", "average_volume",
	"last_updated",
}

// zeroPriceGuard は価格 0 の行が保存済みの正の価格を上書きしないようにする条件です。
const zeroPriceGuard = "(excluded.price > 0 OR assets.price = 0)"

type assetGorm struct {
	db *gorm.DB
}

var _ usecase.AssetRepository = (*assetGorm)(nil)

// NewAssetRepository は指定されたDB接続で assetGorm リポジトリの新しいインスタンスを生成します。
func NewAssetRepository(db *gorm.DB) *assetGorm {
	return &assetGorm{db: db}
}

// AssetModel is the assets table.
type AssetModel struct {
	ID               string    `gorm:"primaryKey;size:64"`
	Symbol           string    `gorm:"size:32;not null;uniqueIndex"`
	Name             string    `gorm:"size:255;not null"`
	Category         string    `gorm:"size:16;not null;index"`
	Price            float64   `gorm:"not null"`
	Change           float64   `gorm:"not null"`
	ChangePercent    float64   `gorm:"not null"`
	Volume           int64     `gorm:"not null"`
	MarketCap        *float64
	MarketCapRank    *int
	DayHigh          float64   `gorm:"not null"`
	DayLow           float64   `gorm:"not null"`
	OpenPrice        float64   `gorm:"not null"`
	PreviousClose    float64   `gorm:"not null"`
	FiftyTwoWeekHigh float64   `gorm:"not null"`
	FiftyTwoWeekLow  float64   `gorm:"not null"`
	AverageVolume    int64     `gorm:"not null"`
	LastUpdated      time.Time `gorm:"not null;index"`
}

func (AssetModel) TableName() string {
	return "assets"
}

func toModel(e entity.Asset) AssetModel {
	return AssetModel{
		ID:               e.ID,
		Symbol:           e.Symbol,
		Name:             e.Name,
		Category:         string(e.Category),
		Price:            e.Price,
		Change:           e.Change,
		ChangePercent:    e.ChangePercent,
		Volume:           e.Volume,
		MarketCap:        e.MarketCap,
		MarketCapRank:    e.MarketCapRank,
		DayHigh:          e.DayHigh,
		DayLow:           e.DayLow,
		OpenPrice:        e.OpenPrice,
		PreviousClose:    e.PreviousClose,
		FiftyTwoWeekHigh: e.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  e.FiftyTwoWeekLow,
		AverageVolume:    e.AverageVolume,
		LastUpdated:      e.LastUpdated,
	}
}

func toEntity(m AssetModel) entity.Asset {
	return entity.Asset{
		ID:            m.ID,
		Symbol:        m.Symbol,
		Name:          m.Name,
		Category:      entity.Category(m.Category),
		MarketCapRank: m.MarketCapRank,
		MarketData: entity.MarketData{
			Price:            m.Price,
			Change:           m.Change,
			ChangePercent:    m.ChangePercent,
			Volume:           m.Volume,
			MarketCap:        m.MarketCap,
			DayHigh:          m.DayHigh,
			DayLow:           m.DayLow,
			OpenPrice:        m.OpenPrice,
			PreviousClose:    m.PreviousClose,
			FiftyTwoWeekHigh: m.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:  m.FiftyTwoWeekLow,
			AverageVolume:    m.AverageVolume,
		},
		LastUpdated: m.LastUpdated,
	}
}

// UpsertBatch は id をキーに一括 upsert します。
func (r *assetGorm) UpsertBatch(ctx context.Context, assets []entity.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	ms := make([]AssetModel, 0, len(assets))
	for _, e := range assets {
		ms = append(ms, toModel(e))
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: zeroPriceGuard}}},
	}).Create(&ms).Error
	return mapWriteError(err)
}

// ListAll はシンボル順に全資産を返します。
func (r *assetGorm) ListAll(ctx context.Context) ([]entity.Asset, error) {
	var rows []AssetModel
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// FindBySymbols returns the stored rows for the given vendor-format symbols.
func (r *assetGorm) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	var rows []AssetModel
	if err := r.db.WithContext(ctx).
		Where("symbol IN ?", symbols).
		Order("symbol ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// DeleteByIDs deletes rows by id and returns the number removed.
func (r *assetGorm) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&AssetModel{})
	return res.RowsAffected, res.Error
}

// DeleteBySymbol deletes the row with the given symbol.
func (r *assetGorm) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&AssetModel{})
	return res.RowsAffected, res.Error
}

func toEntities(rows []AssetModel) []entity.Asset {
	out := make([]entity.Asset, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

// mapWriteError は symbol の一意制約違反を usecase.ErrSymbolConflict に変換します。
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", usecase.ErrSymbolConflict, pgErr.Detail)
	}
	// SQLite (ローカル開発・テスト)
	if strings.Contains(err.Error(), "UNIQUE constraint failed: assets.symbol") {
		return fmt.Errorf("%w: %v", usecase.ErrSymbolConflict, err)
	}
	return err
}
