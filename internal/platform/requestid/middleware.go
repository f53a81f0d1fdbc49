// Package requestid は X-Request-ID の付与とリクエスト単位のロガーを提供します。
package requestid

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"market_backend/internal/platform/logger"
)

const (
	HeaderName = "X-Request-ID"
	ContextKey = "requestID"
)

const maxIncomingLen = 128

// Middleware はリクエストIDを決め（受信ヘッダー優先、無ければ UUIDv4）、
// そのIDを持つ子ロガーをリクエストの context に入れ、完了時にアクセスログを出します。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderName)
		if id == "" || len(id) > maxIncomingLen {
			id = uuid.NewString()
		}
		c.Set(ContextKey, id)
		c.Header(HeaderName, id)

		log := slog.Default().With("request_id", id)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		start := time.Now()
		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
