package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "assetquotes-service/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	SQLiteDSN   string
	// Upstream
	Provider        string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	// Ingestion
	AssetSymbols      []string
	IngestConcurrency int
	StoreTimeout      time.Duration
	QueryPageSize     int
	// Worker
	WorkerMode string
	ScheduleAt string
	// gRPC
	GRPCAddr       string
	GRPCTarget     string
	RequestTimeout time.Duration
	// Redis (run lock)
	RunLockBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RunLockTTL     time.Duration
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

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
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

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", infraconfig.DefaultHTTPPort),
		Storage:           getEnv("STORAGE", "pg"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLiteDSN:         getEnv("SQLITE_DSN", "file:assetquotes.db"),
		Provider:          getEnv("UPSTREAM_PROVIDER", "goldapi"),
		UpstreamBaseURL:   getEnv("UPSTREAM_BASE_URL", "https://api.gold-api.com/price"),
		UpstreamTimeout:   durMS("UPSTREAM_TIMEOUT_MS", 10000),
		AssetSymbols:      splitList(getEnv("ASSET_SYMBOLS", "")),
		IngestConcurrency: atoiDef(getEnv("INGEST_CONCURRENCY", "4"), 4),
		StoreTimeout:      durMS("STORE_TIMEOUT_MS", 5000),
		QueryPageSize:     atoiDef(getEnv("QUERY_PAGE_SIZE", "100"), 100),
		WorkerMode:        getEnv("WORKER_MODE", "schedule"),
		ScheduleAt:        getEnv("SCHEDULE_AT", "21:30"),
		GRPCAddr:          getEnv("GRPC_ADDR", ":9090"),
		GRPCTarget:        getEnv("GRPC_TARGET", "localhost:9090"),
		RequestTimeout:    durMS("REQUEST_TIMEOUT_MS", 3000),
		RunLockBackend:    getEnv("RUN_LOCK_BACKEND", "redis"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           atoiDef(getEnv("REDIS_DB", "0"), 0),
		RunLockTTL:        durMS("RUN_LOCK_TTL_MS", 15*60*1000),
	}
}
