package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Browser backends
const (
	BrowserModeRod  = "rod"
	BrowserModeHTTP = "http"
)

// Config represents the application configuration
type Config struct {
	// Postgres configuration; empty selects the in-memory store
	DatabaseURL string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Product cache configuration
	CacheTTL          time.Duration
	CacheSingleFlight bool

	// Scraper configuration
	BrowserMode string
	ChromeBin   string
	BlockTime   time.Duration
	DelayMin    time.Duration
	DelayMax    time.Duration

	// Watch worker configuration
	WatchURLs       []string
	RefreshInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	ttlMinutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "120"))
	singleFlight, _ := strconv.ParseBool(getEnv("CACHE_SINGLE_FLIGHT", "false"))
	blockSeconds, _ := strconv.Atoi(getEnv("SCRAPE_BLOCK_SECONDS", "300"))
	delayMin, _ := strconv.Atoi(getEnv("DELAY_MIN_MS", "1500"))
	delayMax, _ := strconv.Atoi(getEnv("DELAY_MAX_MS", "2200"))
	refreshSeconds, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "600"))

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "price_updates"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CacheTTL:             time.Duration(ttlMinutes) * time.Minute,
		CacheSingleFlight:    singleFlight,
		BrowserMode:          strings.ToLower(getEnv("BROWSER_MODE", BrowserModeRod)),
		ChromeBin:            getEnv("CHROME_BIN", ""),
		BlockTime:            time.Duration(blockSeconds) * time.Second,
		DelayMin:             time.Duration(delayMin) * time.Millisecond,
		DelayMax:             time.Duration(delayMax) * time.Millisecond,
		WatchURLs:            splitList(getEnv("WATCH_URLS", "")),
		RefreshInterval:      time.Duration(refreshSeconds) * time.Second,
		Environment:          getEnv("PRICEPEEK_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("invalid delay range %v..%v", c.DelayMin, c.DelayMax)
	}
	if c.BrowserMode != BrowserModeRod && c.BrowserMode != BrowserModeHTTP {
		return fmt.Errorf("unknown BROWSER_MODE %q", c.BrowserMode)
	}
	if c.RedisStreamCount < 1 {
		return fmt.Errorf("REDIS_STREAM_COUNT must be at least 1")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
