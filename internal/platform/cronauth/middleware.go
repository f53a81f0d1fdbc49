// Package cronauth はスケジューラ起動のエンドポイントを共有シークレットで保護します。
package cronauth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"market_backend/internal/platform/logger"
)

// BearerSecret は Authorization: Bearer <secret> を定数時間で比較するミドルウェアです。
// secret が空の場合は設定不備として 500 を返し、処理を一切行いません。
func BearerSecret(secret string) gin.HandlerFunc {
	want := []byte("Bearer " + secret)
	return func(c *gin.Context) {
		if secret == "" {
			logger.FromContext(c.Request.Context()).Error("cron secret is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}
		got := []byte(strings.TrimSpace(c.GetHeader("Authorization")))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
