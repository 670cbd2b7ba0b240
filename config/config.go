package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Countries to harvest, in processing order
	Countries []string

	// Output locations
	LinksRoot    string
	ProductsRoot string
	ImagesRoot   string
	RejectsFile  string

	// Product API configuration
	ProductAPIURL string

	// Fetch configuration
	RequestTimeout time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	PageDelay      time.Duration
	PageSize       int

	// Worker configuration
	CrawlInterval time.Duration
	TestModeLimit int

	// Redis publisher configuration
	PublishEnabled       bool
	RedisAddr            string
	RedisDB              int
	RedisStreamPrefix    string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration (empty address selects the in-memory cache)
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Metrics HTTP server address (empty disables the server)
	MetricsAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	timeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "10"))
	maxRetries, _ := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	backoffBase, _ := strconv.Atoi(getEnv("BACKOFF_BASE_SECONDS", "1"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "1"))
	pageSize, _ := strconv.Atoi(getEnv("PAGE_SIZE", "48"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "3600"))
	testModeLimit, _ := strconv.Atoi(getEnv("TEST_MODE_LIMIT", "0"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))

	return Config{
		Countries:            splitCSV(getEnv("HARVEST_COUNTRIES", "fr,us,uk")),
		LinksRoot:            getEnv("LINKS_ROOT", "adidas_data"),
		ProductsRoot:         getEnv("PRODUCTS_ROOT", "adidas_products"),
		ImagesRoot:           getEnv("IMAGES_ROOT", "adidas_products/images"),
		RejectsFile:          getEnv("REJECTS_FILE", "rejected_codes.txt"),
		ProductAPIURL:        getEnv("PRODUCT_API_URL", "https://www.adidas.fr/plp-app/api/product/"),
		RequestTimeout:       time.Duration(timeout) * time.Second,
		MaxRetries:           maxRetries,
		BackoffBase:          time.Duration(backoffBase) * time.Second,
		PageDelay:            time.Duration(pageDelay) * time.Second,
		PageSize:             pageSize,
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		TestModeLimit:        testModeLimit,
		PublishEnabled:       getEnv("PUBLISH_ENABLED", "false") == "true",
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStreamPrefix:    getEnv("REDIS_STREAM_PREFIX", "products"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RateLimitBlock:       time.Duration(blockSeconds) * time.Second,
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		Environment:          getEnv("HARVEST_ENVIRONMENT", "development"),
	}
}

// Validate ensures the configuration values are coherent
func (c *Config) Validate() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("at least one country is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.BackoffBase < 0 {
		return fmt.Errorf("backoff base cannot be negative")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay cannot be negative")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.ProductAPIURL == "" {
		return fmt.Errorf("product API URL cannot be empty")
	}
	if c.LinksRoot == "" || c.ProductsRoot == "" || c.ImagesRoot == "" {
		return fmt.Errorf("output roots cannot be empty")
	}
	if c.PublishEnabled {
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required when publishing is enabled")
		}
		if c.RedisStreamCount < 1 {
			return fmt.Errorf("redis stream count must be at least 1")
		}
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

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
