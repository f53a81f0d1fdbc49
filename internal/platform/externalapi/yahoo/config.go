// Package yahoo は Yahoo Finance の quote API クライアントを提供します。
package yahoo

import (
	"os"
	"time"
)

const (
	defaultBaseURL    = "https://query1.finance.yahoo.com"
	defaultSessionURL = "https://fc.yahoo.com"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL    string        // quote / crumb API (e.g., "https://query1.finance.yahoo.com")
	SessionURL string        // セッションCookieを発行するURL。空ならCookie取得を省略
	UserAgent  string        // ブラウザ以外のUAは拒否されることがある
	Timeout    time.Duration // HTTP request timeout
}

// LoadConfig loads Yahoo Finance configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL:    getenv("YAHOO_BASE_URL", defaultBaseURL),
		SessionURL: getenv("YAHOO_SESSION_URL", defaultSessionURL),
		UserAgent:  getenv("YAHOO_USER_AGENT", defaultUserAgent),
		Timeout:    10 * time.Second,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
