package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Storage: memory | pg | redis | sqlite
	Storage     string
	DatabaseURL string
	SQLitePath  string
	// Redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	// Provider: alphavantage | fake
	Provider              string
	MarketBaseURL         string
	MarketAPIKey          string
	MarketTimeout         time.Duration
	MarketDefaultCurrency string
	// Policy
	StaleAfterSeconds int
	HealthPingTimeout time.Duration
	// Worker
	SeedDemoData    bool
	WatchSymbols    []string
	RefreshSchedule string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults. Values are read
// once; nothing consults the environment while serving requests.
func Load() Config {
	stale := atoiDef(getEnv("STALE_AFTER_SECONDS", "60"), 60)
	if stale < 0 {
		stale = 60
	}
	timeoutSec := atoiDef(getEnv("MARKET_TIMEOUT_SECONDS", "10"), 10)
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	pingMS := atoiDef(getEnv("HEALTH_PING_TIMEOUT_MS", "2000"), 2000)
	if pingMS <= 0 {
		pingMS = 2000
	}
	return Config{
		Env:                   getEnv("ENV", "local"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		Port:                  getEnv("PORT", "8080"),
		Storage:               strings.ToLower(getEnv("STORAGE", "memory")),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		SQLitePath:            getEnv("SQLITE_PATH", "quotes.db"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisKeyPrefix:        getEnv("REDIS_KEY_PREFIX", "quotes:"),
		Provider:              strings.ToLower(getEnv("PROVIDER", "alphavantage")),
		MarketBaseURL:         getEnv("MARKET_BASE_URL", "https://www.alphavantage.co"),
		MarketAPIKey:          getEnv("MARKET_API_KEY", ""),
		MarketTimeout:         time.Duration(timeoutSec) * time.Second,
		MarketDefaultCurrency: getEnv("MARKET_DEFAULT_CURRENCY", "USD"),
		StaleAfterSeconds:     stale,
		HealthPingTimeout:     time.Duration(pingMS) * time.Millisecond,
		SeedDemoData:          boolDef(getEnv("SEED_DEMO_DATA", "false"), false),
		WatchSymbols:          splitList(getEnv("WATCH_SYMBOLS", "")),
		RefreshSchedule:       getEnv("REFRESH_SCHEDULE", "@every 1m"),
	}
}
