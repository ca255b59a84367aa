// Package httpclient provides the outbound HTTP client behind provider
// calls: request timeouts, bearer auth, transient-status classification and
// rate-limit header parsing. The client performs exactly one attempt per
// request; retrying belongs to the retry orchestrator so the attempt budget
// lives in one place.
package httpclient

import (
	"net/http"
	"time"
)

// RateLimitInfo carries the rate-limit state a provider reported in its
// response headers.
type RateLimitInfo struct {
	RetryAfter        time.Duration
	ResetAfter        time.Duration
	RequestsRemaining int
	TokensRemaining   int
}

// RateLimitHeaderParser extracts rate-limit info from response headers.
type RateLimitHeaderParser func(http.Header) RateLimitInfo

// Client wraps an http.Client with bearer auth and header parsing.
type Client struct {
	client       *http.Client
	bearer       string
	headerParser RateLimitHeaderParser
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithBearer sets a bearer token attached to every request that does not
// already carry an Authorization header.
func WithBearer(token string) Option {
	return func(c *Client) {
		c.bearer = token
	}
}

// WithHeaderParser sets the parser used by RateLimit.
func WithHeaderParser(parser RateLimitHeaderParser) Option {
	return func(c *Client) {
		c.headerParser = parser
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client: &http.Client{Timeout: 60 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a single attempt of req. Non-2xx responses are returned with a
// nil error; callers classify the status themselves.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.bearer != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	return c.client.Do(req)
}

// RateLimit parses rate-limit headers with the configured parser. Without a
// parser it returns the zero info.
func (c *Client) RateLimit(headers http.Header) RateLimitInfo {
	if c.headerParser == nil {
		return RateLimitInfo{}
	}
	return c.headerParser(headers)
}

// Transient reports whether a status code signals a retryable condition:
// 429 and the 5xx family. Other 4xx codes are permanent.
func Transient(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
