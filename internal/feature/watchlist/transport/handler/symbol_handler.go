package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/watchlist/domain/entity"
	"market_backend/internal/feature/watchlist/transport/http/dto"
	"market_backend/internal/platform/logger"
)

// SymbolUsecase は監視銘柄に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.ListedSymbol, error)
}

// SymbolHandler は監視銘柄に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な監視銘柄の一覧を返します。
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("list watchlist failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load symbols"})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{
			Code:        s.Code,
			Name:        s.Name,
			Category:    string(s.Category),
			QuoteSymbol: s.QuoteSymbol,
			ChartSymbol: s.ChartSymbol,
		})
	}
	c.JSON(http.StatusOK, out)
}
