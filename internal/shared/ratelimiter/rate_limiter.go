package ratelimiter

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Pacer は外部APIへのリクエスト間隔を制御するインターフェースです。
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer は最低 interval の間隔を空けて Wait を返します。
// 最初の呼び出しは待機しません。
type IntervalPacer struct {
	limiter *rate.Limiter
}

// NewIntervalPacer は新しい IntervalPacer を生成します。interval が 0 以下なら待機しません。
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalPacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait は次のリクエストが許可されるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (p *IntervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Middleware はプロセス全体で共有するトークンバケットでリクエストを制限し、
// 上限を超えた場合は 429 を返します。
func Middleware(perSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
