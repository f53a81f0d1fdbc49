// Package entity defines the domain models for the alerts feature.
package entity

import "time"

// AlertType は閾値の種類です。
type AlertType string

const (
	AlertTypePrice      AlertType = "price"
	AlertTypePercentage AlertType = "percentage"
)

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	return t == AlertTypePrice || t == AlertTypePercentage
}

// Condition は閾値との比較方向です。
type Condition string

const (
	ConditionAbove Condition = "above"
	ConditionBelow Condition = "below"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// Alert はユーザーが登録した価格アラートです。
type Alert struct {
	ID          string
	UserID      string
	AssetSymbol string
	AlertType   AlertType
	Condition   Condition
	Value       float64
	IsActive    bool
	CreatedAt   time.Time
}

// AssetSnapshot は一覧表示用に結合する資産の現在値です。
type AssetSnapshot struct {
	Symbol        string
	Name          string
	Price         float64
	ChangePercent float64
}

// AlertRecord is an alert joined with the current state of its asset.
// Asset is nil when the asset row no longer exists.
type AlertRecord struct {
	Alert
	Asset *AssetSnapshot
}
