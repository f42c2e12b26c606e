// Package seatgeek talks to the SeatGeek platform API: paged listings,
// detail lookups and favourite resolution.
package seatgeek

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.seatgeek.com/2"

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options are query parameters. A key may carry several values.
type Options map[string][]string

// Set replaces the values of key with value.
func (o Options) Set(key, value string) {
	o[key] = []string{value}
}

// Add appends value to key.
func (o Options) Add(key, value string) {
	o[key] = append(o[key], value)
}

// Config holds client configuration.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client issues authenticated GET requests against the API.
type Client struct {
	httpClient *http.Client
	config     Config
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: Config{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithBaseURL sets the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.config.BaseURL = baseURL
	}
}

// WithCredentials sets the client id and secret sent with every request.
func WithCredentials(id, secret string) Option {
	return func(c *Client) {
		c.config.ClientID = id
		c.config.ClientSecret = secret
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client. The configured
// timeout is applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Timeout == 0 {
			hc.Timeout = c.config.Timeout
		}
		c.httpClient = hc
	}
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// URL builds the full request URL for path. Credentials come first,
// followed by opts in key order; a key with several values is repeated.
func (c *Client) URL(path string, opts Options) string {
	params := []string{
		"client_id=" + url.QueryEscape(c.config.ClientID),
		"client_secret=" + url.QueryEscape(c.config.ClientSecret),
	}

	keys := make([]string, 0, len(opts))
	for key := range opts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range opts[key] {
			params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	return base + "/" + strings.TrimLeft(path, "/") + "?" + strings.Join(params, "&")
}

// Get fetches path and decodes the JSON body into out. A non-2xx response
// yields an *UpstreamError.
func (c *Client) Get(ctx context.Context, path string, opts Options, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	requestID := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path, opts), nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("upstream request failed", "request_id", requestID, "path", path, "error", err)
		return err
	}
	defer httpResp.Body.Close()

	c.logger.Debug("upstream request",
		"request_id", requestID,
		"path", path,
		"status", httpResp.StatusCode,
		"duration", time.Since(startTime),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		io.Copy(io.Discard, httpResp.Body)
		return newUpstreamError(httpResp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
