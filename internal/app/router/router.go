package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	alerthandler "market_backend/internal/feature/alerts/transport/handler"
	assethandler "market_backend/internal/feature/assets/transport/handler"
	watchlisthandler "market_backend/internal/feature/watchlist/transport/handler"
	"market_backend/internal/platform/cronauth"
	"market_backend/internal/platform/http/handler"
	jwtmw "market_backend/internal/platform/jwt"
	"market_backend/internal/platform/requestid"
	"market_backend/internal/shared/ratelimiter"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health    *handler.HealthHandler
	Refresh   *assethandler.RefreshHandler
	Market    *assethandler.MarketHandler
	Admin     *assethandler.AdminHandler
	Watchlist *watchlisthandler.SymbolHandler
	Alerts    *alerthandler.AlertHandler
}

// Options はミドルウェアの設定です。
type Options struct {
	CronSecret     string
	AllowedOrigins []string
	// RateLimit は公開の読み取りAPIにだけ適用されます。0 なら制限しません。
	RateLimit float64
	RateBurst int
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	api := r.Group("/api")

	// スケジューラからの更新（共有シークレット）
	cron := api.Group("/cron", cronauth.BearerSecret(opts.CronSecret))
	{
		cron.GET("/update-assets", h.Refresh.Update)
		cron.POST("/update-assets", h.Refresh.Update)
	}

	// 読み取り（認証不要）。レート制限はここだけにかけ、cron を巻き込まない
	public := api.Group("")
	if opts.RateLimit > 0 {
		public.Use(ratelimiter.Middleware(opts.RateLimit, opts.RateBurst))
	}
	{
		public.GET("/market", h.Market.GetMarket)
		public.GET("/market/live", h.Market.GetLive)
		public.GET("/quote/:symbol", h.Market.GetQuote)
		public.GET("/symbols", h.Watchlist.List)
	}

	// 認証必須のルート
	auth := api.Group("/", jwtmw.AuthRequired())
	{
		auth.GET("/alerts", h.Alerts.List)
		auth.POST("/alerts", h.Alerts.Create)
		auth.DELETE("/alerts", h.Alerts.DeleteByAsset)
		auth.PATCH("/alerts/:id", h.Alerts.Update)
		auth.DELETE("/alerts/:id", h.Alerts.Delete)
	}

	admin := api.Group("/admin", jwtmw.AuthRequired(), jwtmw.RequireRole(jwtmw.RoleAdmin))
	{
		admin.DELETE("/assets/:symbol", h.Admin.DeleteAsset)
		admin.POST("/assets/cleanup", h.Admin.Cleanup)
	}

	return r
}

// corsConfig は許可オリジンが空なら全オリジンを許可します（ローカル開発用）。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestid.HeaderName},
		ExposeHeaders: []string{requestid.HeaderName},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
