// Package config はサーバーとCLIが共有するアプリケーション設定を読み込みます。
// DB・Redis・Yahoo の接続設定は各 platform パッケージの LoadConfig が担当します。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"market_backend/internal/platform/db"
)

// Config はアプリケーション設定です。
type Config struct {
	Port               string
	CronSecret         string
	JWTSecret          string
	CORSAllowedOrigins []string
	RefreshBudget      time.Duration
	QuoteCacheTTL      time.Duration
	MarketCacheTTL     time.Duration
	// RateLimit は /api 全体のリクエスト上限（毎秒）です。0 なら制限しません。
	RateLimit float64
	RateBurst int

	DB db.Config
}

// Load は .env（存在すれば）と環境変数から設定を読み込みます。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	var errs []error
	cfg := Config{
		Port:               getenv("PORT", "8080"),
		CronSecret:         os.Getenv("CRON_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RefreshBudget:      duration("REFRESH_BUDGET", 60*time.Second, &errs),
		QuoteCacheTTL:      duration("QUOTE_CACHE_TTL", 30*time.Second, &errs),
		MarketCacheTTL:     duration("MARKET_CACHE_TTL", 5*time.Minute, &errs),
		RateLimit:          float("RATE_LIMIT_RPS", 20, &errs),
		RateBurst:          integer("RATE_LIMIT_BURST", 40, &errs),
		DB:                 db.LoadConfigFromEnv(),
	}
	return cfg, errors.Join(errs...)
}

// Validate はサーバー起動に必須の設定が揃っているかを確認します。
func (c Config) Validate() error {
	var errs []error
	if c.CronSecret == "" {
		errs = append(errs, errors.New("CRON_SECRET is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DB.Driver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if c.DB.User == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required for postgres"))
		}
		if c.DB.Host == "" && c.DB.InstanceName == "" {
			errs = append(errs, errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func duration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func float(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func integer(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}
