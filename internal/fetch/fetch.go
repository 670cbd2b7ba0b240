package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"ldurand/adidasharvester/config"
	"ldurand/adidasharvester/internal/metrics"
	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
	"ldurand/adidasharvester/services/cache"
)

// Fixed browser header profile sent with every request, listing pages and
// API/image fetches alike.
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edge/123.0.0.0",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
	"Referer":                   "https://www.adidas.fr/",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
	"Pragma":                    "no-cache",
	"DNT":                       "1",
}

// Client issues GET requests with the fixed header profile, a per-request
// timeout and bounded linear-backoff retry for transient failures.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
	cacheSvc    cache.CacheService
	blockTime   time.Duration
	metrics     *metrics.Metrics
	log         *logger.Logger

	// sleep is swapped out in tests to avoid wall-clock delays
	sleep func(time.Duration)
}

// NewClient builds a fetch client from the configuration. cacheSvc and m may
// be nil; the rate-limit cooldown and metrics are then disabled.
func NewClient(cfg config.Config, cacheSvc cache.CacheService, m *metrics.Metrics) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		cacheSvc:    cacheSvc,
		blockTime:   cfg.RateLimitBlock,
		metrics:     m,
		log:         logger.ForComponent("fetch"),
		sleep:       time.Sleep,
	}
}

// Get fetches rawURL and returns the response body. Transient network
// failures are retried up to the configured attempt budget with a backoff of
// backoffBase × attempt; exhaustion, non-200 statuses and terminal network
// errors surface as distinct error kinds.
func (c *Client) Get(rawURL string) ([]byte, error) {
	key, blocked := c.cooldownKey(rawURL)
	if blocked {
		return nil, errs.NewRateLimit(rawURL, c.blockTime)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.metrics.IncRequest("attempt")

		body, err := c.doRequest(rawURL)
		if err == nil {
			return body, nil
		}

		if status := errs.StatusCode(err); status != 0 {
			if status == http.StatusTooManyRequests && c.cacheSvc != nil && key != "" {
				c.cacheSvc.Set(key, []byte("blocked"), c.blockTime)
			}
			c.metrics.IncError(errs.TypeLabel(err))
			return nil, err
		}

		var he *errs.HarvestError
		if !errors.As(err, &he) || !he.IsRetryable() {
			c.metrics.IncError(errs.TypeLabel(err))
			return nil, err
		}

		lastErr = err
		if attempt < c.maxRetries {
			delay := c.backoffBase * time.Duration(attempt)
			c.log.Warn().
				Str("url", rawURL).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Err(err).
				Msg("Transient fetch failure, retrying")
			c.metrics.IncRetries()
			c.sleep(delay)
		}
	}

	c.metrics.IncError(string(errs.ErrorTypeExhausted))
	return nil, errs.NewExhausted(rawURL, c.maxRetries, lastErr)
}

// Document fetches rawURL and parses the body into a goquery document.
func (c *Client) Document(rawURL string) (*goquery.Document, error) {
	body, err := c.Get(rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewParsing(rawURL, "parse HTML document", err)
	}
	return doc, nil
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(rawURL string, v interface{}) error {
	body, err := c.Get(rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errs.NewParsing(rawURL, "decode JSON payload", err)
	}
	return nil
}

func (c *Client) doRequest(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.NewValidation(rawURL, fmt.Sprintf("create request: %v", err))
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		if isTransient(err) {
			return nil, errs.NewNetwork(rawURL, "request failed", err)
		}
		return nil, errs.NewTerminal(rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, errs.NewStatus(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewNetwork(rawURL, "read response body", err)
	}

	return normalizeCharset(body, resp.Header.Get("Content-Type"))
}

// normalizeCharset converts textual responses to UTF-8. Binary payloads
// (images) pass through untouched.
func normalizeCharset(body []byte, contentType string) ([]byte, error) {
	ct := strings.ToLower(contentType)
	if !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "json") && !strings.Contains(ct, "xml") {
		return body, nil
	}

	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	converted, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, errs.NewParsing("", "convert body to UTF-8", err)
	}
	return converted, nil
}

// cooldownKey returns the rate-limit cache key for rawURL's host and whether
// the host is currently blocked.
func (c *Client) cooldownKey(rawURL string) (string, bool) {
	if c.cacheSvc == nil {
		return "", false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	key := "rate_limited:" + parsed.Host
	if _, err := c.cacheSvc.Get(key); err == nil {
		return key, true
	}
	return key, false
}

// isTransient reports whether err is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
