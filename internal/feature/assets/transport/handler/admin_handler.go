package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/transport/http/dto"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/logger"
)

// AssetMaintainer は管理者向けの資産整理操作です。
type AssetMaintainer interface {
	PlanCleanup(ctx context.Context) (entity.DedupPlan, error)
	ApplyCleanup(ctx context.Context) (entity.CleanupResult, error)
	DeleteBySymbol(ctx context.Context, sym string) error
}

// AdminHandler は /api/admin 配下のリクエストを処理します。
type AdminHandler struct {
	uc AssetMaintainer
}

// NewAdminHandler は新しい AdminHandler を作成します。
func NewAdminHandler(uc AssetMaintainer) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// DeleteAsset は DELETE /api/admin/assets/:symbol を処理します。
func (h *AdminHandler) DeleteAsset(c *gin.Context) {
	err := h.uc.DeleteBySymbol(c.Request.Context(), c.Param("symbol"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
	case errors.Is(err, usecase.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "asset not found"})
	case errors.Is(err, usecase.ErrSymbolRequired):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol is required"})
	default:
		logger.FromContext(c.Request.Context()).Error("delete asset failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete asset"})
	}
}

// Cleanup は POST /api/admin/assets/cleanup?dryRun= を処理します。dryRun の既定値は true です。
func (h *AdminHandler) Cleanup(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dryRun", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "dryRun must be true or false"})
		return
	}

	ctx := c.Request.Context()
	if dryRun {
		plan, err := h.uc.PlanCleanup(ctx)
		if err != nil {
			logger.FromContext(ctx).Error("plan cleanup failed", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to plan cleanup"})
			return
		}
		c.JSON(http.StatusOK, toCleanupResponse(plan, true))
		return
	}

	res, err := h.uc.ApplyCleanup(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("apply cleanup failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to apply cleanup"})
		return
	}
	out := toCleanupResponse(res.Plan, false)
	out.Deleted = res.Deleted
	out.Corrected = res.Corrected
	out.Remaining = res.Remaining
	c.JSON(http.StatusOK, out)
}

func toCleanupResponse(p entity.DedupPlan, dryRun bool) dto.CleanupResponse {
	out := dto.CleanupResponse{
		DryRun:        dryRun,
		Keep:          toCleanupItems(p.Keep),
		Delete:        p.Delete,
		Misclassified: toCleanupItems(p.Misclassified),
	}
	if out.Delete == nil {
		out.Delete = []string{}
	}
	if dryRun {
		out.Remaining = len(p.Delete)
	}
	return out
}

func toCleanupItems(in []entity.Asset) []dto.CleanupItem {
	out := make([]dto.CleanupItem, 0, len(in))
	for _, a := range in {
		out = append(out, dto.CleanupItem{ID: a.ID, Symbol: a.Symbol, Category: string(a.Category)})
	}
	return out
}
