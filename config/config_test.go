package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, []string{"fr", "us", "uk"}, config.Countries)
	assert.Equal(t, "adidas_data", config.LinksRoot)
	assert.Equal(t, "adidas_products", config.ProductsRoot)
	assert.Equal(t, "rejected_codes.txt", config.RejectsFile)
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, time.Second, config.BackoffBase)
	assert.Equal(t, 48, config.PageSize)
	assert.False(t, config.PublishEnabled)
	assert.Equal(t, 0, config.TestModeLimit)

	// Test with environment variables
	os.Setenv("HARVEST_COUNTRIES", "fr")
	os.Setenv("LINKS_ROOT", "/tmp/links")
	os.Setenv("MAX_RETRIES", "5")
	os.Setenv("PAGE_SIZE", "24")
	os.Setenv("PUBLISH_ENABLED", "true")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("TEST_MODE_LIMIT", "100")

	config = LoadConfig()
	assert.Equal(t, []string{"fr"}, config.Countries)
	assert.Equal(t, "/tmp/links", config.LinksRoot)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 24, config.PageSize)
	assert.True(t, config.PublishEnabled)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 100, config.TestModeLimit)

	// Clean up
	os.Unsetenv("HARVEST_COUNTRIES")
	os.Unsetenv("LINKS_ROOT")
	os.Unsetenv("MAX_RETRIES")
	os.Unsetenv("PAGE_SIZE")
	os.Unsetenv("PUBLISH_ENABLED")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("TEST_MODE_LIMIT")
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	assert.NoError(t, valid.Validate())

	noCountries := LoadConfig()
	noCountries.Countries = nil
	assert.Error(t, noCountries.Validate())

	badRetries := LoadConfig()
	badRetries.MaxRetries = 0
	assert.Error(t, badRetries.Validate())

	badTimeout := LoadConfig()
	badTimeout.RequestTimeout = 0
	assert.Error(t, badTimeout.Validate())

	badPageSize := LoadConfig()
	badPageSize.PageSize = 0
	assert.Error(t, badPageSize.Validate())

	publishWithoutRedis := LoadConfig()
	publishWithoutRedis.PublishEnabled = true
	publishWithoutRedis.RedisAddr = ""
	assert.Error(t, publishWithoutRedis.Validate())
}
