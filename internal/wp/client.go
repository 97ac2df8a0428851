// Package wp is a client for the WordPress REST API (wp-json/wp/v2) that
// walks paginated listings to completion.
package wp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// PerPage is the fixed page size requested from the API.
	PerPage = 50

	// TotalPagesHeader carries the page count of a listing.
	TotalPagesHeader = "X-WP-TotalPages"

	// apiPath is the REST root below the site URL.
	apiPath = "/wp-json/wp/v2/"

	// maxBodySize caps a single page response.
	maxBodySize = 8 << 20

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "catalog/1.0 (+https://github.com/abelbrown/catalog)"
)

// defaultBackoffs are the waits between retries of a transient failure.
var defaultBackoffs = []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string

	// RetryAfter is the server's Retry-After hint on 429, zero otherwise.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d fetching %s: %s", e.StatusCode, e.URL, e.Body)
}

// Client talks to one WordPress site.
type Client struct {
	site      *url.URL
	client    *http.Client
	limiter   *rate.Limiter
	backoffs  []time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second across all chains. Zero or
// negative means unlimited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBackoffs sets the retry schedule; an empty schedule disables retries.
func WithBackoffs(backoffs ...time.Duration) Option {
	return func(c *Client) { c.backoffs = backoffs }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the site at siteURL (e.g.
// "https://example.org"). The URL must be absolute http(s).
func NewClient(siteURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(siteURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("site url %q must be an absolute http(s) url", siteURL)
	}

	c := &Client{
		site:      u,
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(10), 5),
		backoffs:  defaultBackoffs,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Site returns the site URL the client was built for.
func (c *Client) Site() string {
	return c.site.String()
}

// Endpoint returns the absolute URL of a route below wp-json/wp/v2.
func (c *Client) Endpoint(route string) string {
	u := *c.site
	u.Path = strings.TrimRight(u.Path, "/") + apiPath + strings.TrimLeft(route, "/")
	u.RawQuery = ""
	return u.String()
}

// pageResponse is one raw page.
type pageResponse struct {
	body       []byte
	totalPages int
}

// getPage fetches one page of route with params plus page/per_page.
func (c *Client) getPage(ctx context.Context, route string, params url.Values, page int) (*pageResponse, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(PerPage))

	target := c.Endpoint(route) + "?" + q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.doWithRetry(ctx, target)
}

// doWithRetry GETs target, retrying transport errors, 429 and 5xx with the
// configured backoff. Retry-After is honored on 429.
func (c *Client) doWithRetry(ctx context.Context, target string) (*pageResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= len(c.backoffs); attempt++ {
		if attempt > 0 {
			delay := c.backoffs[attempt-1]
			var httpErr *HTTPError
			if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > 0 {
				delay = httpErr.RetryAfter
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.do(ctx, target)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	if len(c.backoffs) == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", len(c.backoffs), lastErr)
}

func (c *Client) do(ctx context.Context, target string) (*pageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: target, Body: snippet(body)}
		if resp.StatusCode == http.StatusTooManyRequests {
			httpErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, httpErr
	}

	return &pageResponse{
		body:       body,
		totalPages: ParseTotalPages(resp.Header.Get(TotalPagesHeader)),
	}, nil
}

// retryable reports whether a failed request is worth repeating: transport
// errors, 429 and 5xx.
func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}

// parseRetryAfter reads a delay-seconds Retry-After value, capped at 30s.
func parseRetryAfter(v string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds <= 0 {
		return 0
	}
	d := time.Duration(seconds) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// ParseTotalPages reads the X-WP-TotalPages header value. Missing,
// malformed or non-positive values mean a single page.
func ParseTotalPages(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
