package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dexpulse/trendwatch/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string

	// State database (sqlite file)
	DatabasePath string

	// Telegram
	TelegramAPIBaseURL string
	TelegramBotToken   string
	TelegramChatID     string

	// Market data API
	GeckoBaseURL    string
	RateLimitPerMin int
	HTTPTimeout     time.Duration
	RetryMax        int
	RetryBase       time.Duration

	// Trending
	Networks      []string
	PoolPageSize  int
	TopN          int
	WindowsMins   []int
	PollInterval  time.Duration
	WeightVolume  float64
	WeightPrice   float64
	WeightTrades  float64
	WeightSpike   float64
	WeightLiq     float64
	WeightNetBuy  float64

	// Alerts
	AlertsEnabled       bool
	AlertMode           string // log, telegram (comma-separated)
	AlertPriceChangePct float64
	AlertCooldown       time.Duration // 0 = single-fire per pool
	AlertOffset         time.Duration // stagger from the trending cadence

	// Metrics/Health
	HealthPort int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:         getEnv("ENVIRONMENT", "production"),
		DatabasePath:        getEnv("DATABASE_PATH", "trendwatch.db"),
		TelegramAPIBaseURL:  getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		TelegramBotToken:    secrets.GetOptionalSecret("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
		GeckoBaseURL:        getEnv("GECKO_BASE_URL", "https://api.geckoterminal.com/api/v2"),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MIN", 30),
		HTTPTimeout:         time.Duration(getEnvInt("HTTP_TIMEOUT_SEC", 20)) * time.Second,
		RetryMax:            getEnvInt("RETRY_MAX", 3),
		RetryBase:           time.Duration(getEnvInt("RETRY_BASE_MS", 500)) * time.Millisecond,
		Networks:            parseCSV(getEnv("NETWORK_SLUGS", "besc-hyperchain")),
		PoolPageSize:        getEnvInt("POOL_PAGE_SIZE", 50),
		TopN:                getEnvInt("TRENDING_SIZE", 5),
		WindowsMins:         parseIntList(getEnv("WINDOWS_MINUTES", "10,30,60")),
		PollInterval:        time.Duration(getEnvInt("POLL_INTERVAL_MINS", 5)) * time.Minute,
		WeightVolume:        getEnvFloat("WEIGHT_SHORT_VOLUME", 0.5),
		WeightPrice:         getEnvFloat("WEIGHT_PRICE_CHANGE", 100.0),
		WeightTrades:        getEnvFloat("WEIGHT_TRADE_COUNT", 20.0),
		WeightSpike:         getEnvFloat("WEIGHT_SPIKE_RATIO", 200.0),
		WeightLiq:           getEnvFloat("WEIGHT_LIQUIDITY", 0.0),
		WeightNetBuy:        getEnvFloat("WEIGHT_NET_BUY_VOLUME", 0.0),
		AlertsEnabled:       getEnvBool("ALERTS_ENABLED", false),
		AlertMode:           getEnv("ALERT_MODE", "telegram"),
		AlertPriceChangePct: getEnvFloat("ALERT_PRICE_CHANGE_PCT", 20.0),
		AlertCooldown:       time.Duration(getEnvInt("ALERT_COOLDOWN_HOURS", 24)) * time.Hour,
		AlertOffset:         time.Duration(getEnvInt("ALERT_OFFSET_MINS", 2)) * time.Minute,
		HealthPort:          getEnvInt("HEALTH_PORT", 8080),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if len(c.Networks) == 0 {
		return fmt.Errorf("NETWORK_SLUGS must name at least one network")
	}
	for _, n := range c.Networks {
		if n == "" {
			return fmt.Errorf("NETWORK_SLUGS contains an empty slug")
		}
	}
	if c.PoolPageSize < 1 {
		return fmt.Errorf("POOL_PAGE_SIZE must be >= 1, got %d", c.PoolPageSize)
	}
	if c.TopN < 1 {
		return fmt.Errorf("TRENDING_SIZE must be >= 1, got %d", c.TopN)
	}
	if len(c.WindowsMins) == 0 {
		return fmt.Errorf("WINDOWS_MINUTES must name at least one window")
	}
	for i, w := range c.WindowsMins {
		if w <= 0 {
			return fmt.Errorf("WINDOWS_MINUTES values must be positive, got %d", w)
		}
		if i > 0 && w <= c.WindowsMins[i-1] {
			return fmt.Errorf("WINDOWS_MINUTES must be strictly increasing")
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MINS must be positive")
	}

	for _, mode := range strings.Split(c.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log", "telegram":
		default:
			return fmt.Errorf("invalid ALERT_MODE value: %s (valid values: log, telegram)", mode)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCSV(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseIntList(s string) []int {
	var result []int
	for _, item := range parseCSV(s) {
		if v, err := strconv.Atoi(item); err == nil {
			result = append(result, v)
		}
	}
	return result
}
