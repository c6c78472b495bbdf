package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// バックエンドの種別。STORE_BACKENDで指定する。
const (
	BackendPostgres = "postgres"
	BackendRecord   = "record"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	StoreBackend   string
	DatabaseURL    string
	RecordStoreURL string

	// Record store client
	StoreTimeout     time.Duration
	StoreAllowedPort int

	// Session
	SessionMaxAge int

	// User registration
	AllowDuplicateEmail bool

	// Rate Limit
	RateLimitGeneral int
	RateLimitCreate  int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 必須項目は選択したバックエンドによって変わる:
// postgresではDATABASE_URL、recordではRECORD_STORE_URLが必須。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.StoreBackend = getEnvString("STORE_BACKEND", BackendPostgres)
	if cfg.StoreBackend != BackendPostgres && cfg.StoreBackend != BackendRecord {
		return nil, fmt.Errorf("invalid STORE_BACKEND: %q (must be %q or %q)",
			cfg.StoreBackend, BackendPostgres, BackendRecord)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RecordStoreURL = os.Getenv("RECORD_STORE_URL")

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendRecord:
		if cfg.RecordStoreURL == "" {
			missing = append(missing, "RECORD_STORE_URL")
		}
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.StoreTimeout = getEnvDuration("STORE_TIMEOUT", 10*time.Second)
	cfg.StoreAllowedPort = getEnvInt("STORE_ALLOWED_PORT", 443)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.AllowDuplicateEmail = getEnvBool("ALLOW_DUPLICATE_EMAIL", false)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCreate = getEnvInt("RATE_LIMIT_CREATE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
