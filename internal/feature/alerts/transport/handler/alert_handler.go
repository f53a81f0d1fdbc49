package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/alerts/domain/entity"
	"market_backend/internal/feature/alerts/transport/http/dto"
	"market_backend/internal/feature/alerts/usecase"
	jwtmw "market_backend/internal/platform/jwt"
	"market_backend/internal/platform/logger"
)

// AlertUsecase はアラートに関するユースケースのインターフェースです。
type AlertUsecase interface {
	Create(ctx context.Context, userID string, in usecase.CreateAlertInput) (entity.AlertRecord, error)
	List(ctx context.Context, userID string) ([]entity.AlertRecord, error)
	SetActive(ctx context.Context, userID, id string, active bool) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByAsset(ctx context.Context, userID, symbol string) (int64, error)
}

// AlertHandler はアラートに関するHTTPリクエストを処理します。
// すべてのルートは jwtmw.AuthRequired の後ろに置かれる前提です。
type AlertHandler struct {
	uc AlertUsecase
}

// NewAlertHandler は新しい AlertHandler を作成します。
func NewAlertHandler(uc AlertUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// List は GET /api/alerts を処理します。
func (h *AlertHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	recs, err := h.uc.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "list alerts failed", err)
		return
	}
	out := make([]dto.AlertResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Create は POST /api/alerts を処理します。
func (h *AlertHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid alert request", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	rec, err := h.uc.Create(c.Request.Context(), userID, usecase.CreateAlertInput{
		AssetSymbol: req.AssetSymbol,
		AlertType:   entity.AlertType(req.AlertType),
		Condition:   entity.Condition(req.Condition),
		Value:       req.Value,
	})
	if err != nil {
		h.fail(c, "create alert failed", err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(rec))
}

// Update は PATCH /api/alerts/:id を処理します。
func (h *AlertHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	if err := h.uc.SetActive(c.Request.Context(), userID, c.Param("id"), *req.IsActive); err != nil {
		h.fail(c, "update alert failed", err)
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

// Delete は DELETE /api/alerts/:id を処理します。
func (h *AlertHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, "delete alert failed", err)
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

// DeleteByAsset は DELETE /api/alerts?assetSymbol= を処理します。
func (h *AlertHandler) DeleteByAsset(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sym := c.Query("assetSymbol")
	if sym == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "assetSymbol is required"})
		return
	}
	n, err := h.uc.DeleteByAsset(c.Request.Context(), userID, sym)
	if err != nil {
		h.fail(c, "delete alerts by asset failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResult{Success: true, Deleted: n})
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

// fail はユースケースのエラーをHTTPステータスに変換します。
func (h *AlertHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidAlert):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "alert not found"})
	case errors.Is(err, usecase.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "asset not found"})
	default:
		logger.FromContext(c.Request.Context()).Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func toResponse(r entity.AlertRecord) dto.AlertResponse {
	out := dto.AlertResponse{
		ID:          r.ID,
		AssetSymbol: r.AssetSymbol,
		AlertType:   string(r.AlertType),
		Condition:   string(r.Condition),
		Value:       r.Value,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
	if r.Asset != nil {
		out.Asset = &dto.AssetSnapshot{
			Symbol:        r.Asset.Symbol,
			Name:          r.Asset.Name,
			Price:         r.Asset.Price,
			ChangePercent: r.Asset.ChangePercent,
		}
	}
	return out
}
