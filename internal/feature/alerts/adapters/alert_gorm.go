// Package adapters はalertsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"market_backend/internal/feature/alerts/domain/entity"
	"market_backend/internal/feature/alerts/usecase"
)

// AlertModel is the price_alerts table.
// condition は予約語なので alert_condition 列に保存します。
type AlertModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:64;not null;index:idx_alerts_user_active,priority:1"`
	AssetSymbol string    `gorm:"size:32;not null;index"`
	AlertType   string    `gorm:"size:16;not null"`
	Condition   string    `gorm:"column:alert_condition;size:8;not null"`
	Value       float64   `gorm:"not null"`
	IsActive    bool      `gorm:"not null;index:idx_alerts_user_active,priority:2"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (AlertModel) TableName() string {
	return "price_alerts"
}

type alertGorm struct {
	db *gorm.DB
}

var _ usecase.AlertRepository = (*alertGorm)(nil)

// NewAlertRepository は指定されたDB接続で alertGorm リポジトリの新しいインスタンスを生成します。
func NewAlertRepository(db *gorm.DB) *alertGorm {
	return &alertGorm{db: db}
}

func (r *alertGorm) Create(ctx context.Context, a entity.Alert) error {
	m := AlertModel{
		ID:          a.ID,
		UserID:      a.UserID,
		AssetSymbol: a.AssetSymbol,
		AlertType:   string(a.AlertType),
		Condition:   string(a.Condition),
		Value:       a.Value,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListActive は有効なアラートを作成日時の新しい順に返します。
func (r *alertGorm) ListActive(ctx context.Context, userID string) ([]entity.Alert, error) {
	var rows []AlertModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Alert, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Alert{
			ID:          m.ID,
			UserID:      m.UserID,
			AssetSymbol: m.AssetSymbol,
			AlertType:   entity.AlertType(m.AlertType),
			Condition:   entity.Condition(m.Condition),
			Value:       m.Value,
			IsActive:    m.IsActive,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

func (r *alertGorm) SetActive(ctx context.Context, userID, id string, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&AlertModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

func (r *alertGorm) Delete(ctx context.Context, userID, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&AlertModel{})
	return res.RowsAffected, res.Error
}

func (r *alertGorm) DeleteByAsset(ctx context.Context, userID, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND asset_symbol = ?", userID, symbol).Delete(&AlertModel{})
	return res.RowsAffected, res.Error
}
