package dto

import "time"

// CreateAlertReq は POST /api/alerts のリクエストボディです。
type CreateAlertReq struct {
	AssetSymbol string  `json:"assetSymbol" binding:"required,max=32"`
	AlertType   string  `json:"alertType" binding:"required,oneof=price percentage"`
	Condition   string  `json:"condition" binding:"required,oneof=above below"`
	Value       float64 `json:"value" binding:"required,gt=0"`
}

// UpdateAlertReq toggles an alert. IsActive is a pointer so that false is not treated as missing.
type UpdateAlertReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// AssetSnapshot is the asset state joined onto an alert.
type AssetSnapshot struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// AlertResponse is one alert.
type AlertResponse struct {
	ID          string         `json:"id"`
	AssetSymbol string         `json:"assetSymbol"`
	AlertType   string         `json:"alertType"`
	Condition   string         `json:"condition"`
	Value       float64        `json:"value"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	Asset       *AssetSnapshot `json:"asset"`
}

// DeleteResult is returned by bulk deletes.
type DeleteResult struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}
