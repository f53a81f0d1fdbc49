package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/transport/http/dto"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/logger"
)

// MarketReader は読み取り面のユースケースです。
type MarketReader interface {
	GetMarket(ctx context.Context) (entity.MarketView, error)
	GetLive(ctx context.Context, category string) (entity.MarketView, error)
	GetQuote(ctx context.Context, sym, category string) (entity.MarketItem, error)
}

// MarketHandler は相場の読み取りAPIを処理します。
type MarketHandler struct {
	uc MarketReader
}

// NewMarketHandler は新しい MarketHandler を作成します。
func NewMarketHandler(uc MarketReader) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// GetMarket は GET /api/market を処理します。保存済みの資産をカテゴリ別に返します。
func (h *MarketHandler) GetMarket(c *gin.Context) {
	view, err := h.uc.GetMarket(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("get market failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load market data"})
		return
	}
	c.JSON(http.StatusOK, toMarketResponse(view))
}

// GetLive は GET /api/market/live?category= を処理します。
func (h *MarketHandler) GetLive(c *gin.Context) {
	view, err := h.uc.GetLive(c.Request.Context(), c.Query("category"))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid category"})
			return
		}
		logger.FromContext(c.Request.Context()).Error("get live market failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load market data"})
		return
	}
	c.JSON(http.StatusOK, toMarketResponse(view))
}

// GetQuote は GET /api/quote/:symbol?category= を処理します。
// 取得失敗は 200 の error 付きレコードで返します。
func (h *MarketHandler) GetQuote(c *gin.Context) {
	item, err := h.uc.GetQuote(c.Request.Context(), c.Param("symbol"), c.Query("category"))
	switch {
	case errors.Is(err, usecase.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid category"})
	case errors.Is(err, usecase.ErrSymbolRequired):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol is required"})
	case err != nil:
		logger.FromContext(c.Request.Context()).Error("get quote failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch quote"})
	default:
		c.JSON(http.StatusOK, toItem(item))
	}
}

func toMarketResponse(v entity.MarketView) dto.MarketResponse {
	out := dto.MarketResponse{
		Stocks:        toItems(v.Groups[entity.CategoryStock]),
		Indices:       toItems(v.Groups[entity.CategoryIndex]),
		Commodities:   toItems(v.Groups[entity.CategoryCommodity]),
		Crypto:        toItems(v.Groups[entity.CategoryCrypto]),
		Forex:         toItems(v.Groups[entity.CategoryForex]),
		Funds:         toItems(v.Groups[entity.CategoryFund]),
		Degraded:      v.Degraded,
		FailedSymbols: toFailed(v.FailedSymbols),
	}
	out.LastUpdated = utcPtr(v.LastUpdated)
	return out
}

// utcPtr は未設定（ゼロ値）の時刻を nil にします。
func utcPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func toItems(in []entity.MarketItem) []dto.MarketItem {
	out := make([]dto.MarketItem, 0, len(in))
	for _, it := range in {
		out = append(out, toItem(it))
	}
	return out
}

func toItem(it entity.MarketItem) dto.MarketItem {
	return dto.MarketItem{
		ID:               it.ID,
		Symbol:           it.Symbol,
		Name:             it.Name,
		Category:         string(it.Category),
		Price:            it.Price,
		Change:           it.Change,
		ChangePercent:    it.ChangePercent,
		Volume:           it.Volume,
		MarketCap:        it.MarketCap,
		MarketCapRank:    it.MarketCapRank,
		DayHigh:          it.DayHigh,
		DayLow:           it.DayLow,
		Open:             it.OpenPrice,
		PreviousClose:    it.PreviousClose,
		FiftyTwoWeekHigh: it.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  it.FiftyTwoWeekLow,
		AverageVolume:    it.AverageVolume,
		LastUpdated:      utcPtr(it.LastUpdated),
		ChartSymbol:      it.ChartSymbol,
		Error:            it.Error,
		ErrorReason:      it.ErrorReason,
	}
}
