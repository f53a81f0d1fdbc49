package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/platform/db"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "CRON_SECRET", "JWT_SECRET", "CORS_ALLOWED_ORIGINS",
		"REFRESH_BUDGET", "QUOTE_CACHE_TTL", "MARKET_CACHE_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"DB_DRIVER", "DB_USER", "DB_NAME", "DB_HOST", "INSTANCE_CONNECTION_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.RefreshBudget)
	assert.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.MarketCacheTTL)
	assert.Equal(t, 20.0, cfg.RateLimit)
	assert.Equal(t, 40, cfg.RateBurst)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CRON_SECRET", "cron")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REFRESH_BUDGET", "45s")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "cron", cfg.CronSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.RefreshBudget)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REFRESH_BUDGET", "soon")
	t.Setenv("RATE_LIMIT_BURST", "-1")

	cfg, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_BUDGET")
	assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")
	assert.Equal(t, 60*time.Second, cfg.RefreshBudget, "falls back to the default")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		CronSecret: "c",
		JWTSecret:  "j",
		DB:         db.Config{Driver: db.DriverPostgres, User: "u", Name: "market", Host: "localhost"},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "sqlite needs nothing else", mutate: func(c *Config) { c.DB = db.Config{Driver: db.DriverSQLite} }},
		{name: "cloud sql socket", mutate: func(c *Config) { c.DB.Host = ""; c.DB.InstanceName = "p:r:i" }},
		{name: "missing cron secret", mutate: func(c *Config) { c.CronSecret = "" }, wantErr: "CRON_SECRET"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "missing db user", mutate: func(c *Config) { c.DB.User = "" }, wantErr: "DB_USER"},
		{name: "missing db host", mutate: func(c *Config) { c.DB.Host = "" }, wantErr: "DB_HOST"},
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "mysql" }, wantErr: "DB_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
