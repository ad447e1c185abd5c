package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"

	"github.com/kvittering/kvittering/internal/listing"
)

// DefaultUserAgent mimics a desktop browser; the marketplaces reject
// obvious bot agents
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single page fetch
const DefaultTimeout = 15 * time.Second

// Client wraps resty.Client with timeout handling and optional retries
type Client struct {
	resty  *resty.Client
	logger *slog.Logger
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transient failure.
	// Zero disables retrying; a failed fetch is reported immediately.
	MaxRetries int
	UserAgent  string
	Debug      bool
	Logger     *slog.Logger
}

// DefaultClientConfig returns sensible defaults for HTTP client
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	restyClient := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "nb-NO,nb;q=0.9,no;q=0.8,en;q=0.7")

	// Add retry conditions
	restyClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		// Retry on network errors
		if err != nil {
			return true
		}
		// Retry on 5xx server errors and 429 rate limiting
		return r.StatusCode() >= 500 || r.StatusCode() == 429
	})

	client := &Client{
		resty:  restyClient,
		logger: config.Logger,
	}

	// Enable debug logging if requested
	if config.Debug && config.Logger != nil {
		restyClient.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
			client.logRequest(r)
			return nil
		})
		restyClient.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
			client.logResponse(r)
			return nil
		})
	}

	return client
}

// Fetch returns the body of a listing page. Any outcome other than a 2xx
// response is returned as a *listing.FetchError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		fetchErr := &listing.FetchError{URL: url, Err: err}
		if resp != nil && resp.RawResponse != nil {
			fetchErr.Status = resp.StatusCode()
		}
		return nil, fetchErr
	}

	// Check for HTTP errors
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &listing.FetchError{URL: url, Status: resp.StatusCode()}
	}

	body := resp.Body()
	if c.logger != nil {
		c.logger.Debug("fetched listing page",
			"url", url,
			"status", resp.StatusCode(),
			"size", humanize.Bytes(uint64(len(body))),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
	return body, nil
}

// logRequest logs HTTP request details
func (c *Client) logRequest(r *resty.Request) {
	if c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request",
		"method", r.Method,
		"url", r.URL,
		"headers", r.Header,
	)
}

// logResponse logs HTTP response details
func (c *Client) logResponse(r *resty.Response) {
	if c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response",
		"status", r.StatusCode(),
		"status_text", r.Status(),
		"url", r.Request.URL,
		"headers", r.Header(),
		"time", r.Time(),
	)

	bodyStr := r.String()
	if len(bodyStr) > 1000 {
		bodyStr = bodyStr[:1000] + "... (truncated)"
	}
	c.logger.Debug("Response Body",
		"body", bodyStr,
	)
}
