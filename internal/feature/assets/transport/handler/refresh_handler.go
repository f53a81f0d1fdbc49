// Package handler はassetsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/transport/http/dto"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/logger"
)

// RefreshRunner は更新ジョブを1回実行します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RefreshRunner interface {
	Run(ctx context.Context) (entity.RefreshReport, error)
}

// RefreshHandler は cron から呼ばれる更新エンドポイントを処理します。
// 認証は cronauth.BearerSecret が前段で行います。
type RefreshHandler struct {
	job RefreshRunner
	now func() time.Time
}

// NewRefreshHandler は新しい RefreshHandler を作成します。
func NewRefreshHandler(job RefreshRunner) *RefreshHandler {
	return &RefreshHandler{job: job, now: time.Now}
}

// Update は GET|POST /api/cron/update-assets を処理します。
func (h *RefreshHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.job.Run(ctx)
	ts := h.now().UTC().Format(time.RFC3339)
	if err != nil {
		logger.FromContext(ctx).Error("asset refresh failed", "error", err, "count", report.Count)
		msg := "failed to update assets"
		if errors.Is(err, usecase.ErrNoQuotesFetched) {
			msg = usecase.ErrNoQuotesFetched.Error()
		}
		c.JSON(http.StatusInternalServerError, dto.RefreshErrorResponse{Success: false, Error: msg, Timestamp: ts})
		return
	}

	logger.FromContext(ctx).Info("asset refresh finished",
		"count", report.Count,
		"failed", len(report.FailedSymbols),
		"skipped", len(report.Skipped),
	)
	c.JSON(http.StatusOK, dto.RefreshResponse{
		Success:       true,
		Count:         report.Count,
		FailedSymbols: toFailed(report.FailedSymbols),
		Skipped:       report.Skipped,
		Timestamp:     ts,
	})
}

func toFailed(in []entity.FailedSymbol) []dto.FailedSymbol {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.FailedSymbol, 0, len(in))
	for _, f := range in {
		out = append(out, dto.FailedSymbol{Symbol: f.Symbol, Reason: f.Reason})
	}
	return out
}
