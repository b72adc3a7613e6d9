package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/brundonsmith/website/internal/metrics"
)

const (
	baseURL        = "https://hacker-news.firebaseio.com/v0"
	algoliaBaseURL = "https://hn.algolia.com/api/v1"
	requestTimeout = 10 * time.Second
	maxConcurrent  = 10
	userAgent      = "brandons.me/1.0"
)

// ErrUnexpectedStatus is returned when an upstream API answers with a
// status other than 200.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// Client talks to the Algolia HN search API and the HN Firebase item API.
type Client struct {
	http      *http.Client
	itemURL   string
	searchURL string
	domains   []string
	limiter   *rate.Limiter
	sem       *semaphore.Weighted
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMaxConcurrent caps the number of upstream requests in flight across
// all callers of the client.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit limits upstream requests to rps per second. Zero or a
// negative value disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithEndpoints overrides the item and search API base URLs.
func WithEndpoints(itemURL, searchURL string) Option {
	return func(c *Client) {
		if itemURL != "" {
			c.itemURL = itemURL
		}
		if searchURL != "" {
			c.searchURL = searchURL
		}
	}
}

// WithBlogDomains sets the domains, in lookup order, under which blog posts
// have been published. Each one is tried when resolving a story.
func WithBlogDomains(domains ...string) Option {
	return func(c *Client) {
		if len(domains) > 0 {
			c.domains = domains
		}
	}
}

// NewClient creates a new HN API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: requestTimeout,
		},
		itemURL:   baseURL,
		searchURL: algoliaBaseURL,
		domains:   []string{"brandons.me", "brandonsmith.ninja"},
		limiter:   rate.NewLimiter(rate.Inf, 1),
		sem:       semaphore.NewWeighted(maxConcurrent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, url string, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: HTTP %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, url, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return nil
}

// GetItem fetches a single item by ID. It returns nil without an error
// when the API has no such item.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	url := fmt.Sprintf("%s/item/%d.json", c.itemURL, id)
	var item *Item
	if err := c.get(ctx, url, &item); err != nil {
		return nil, err
	}
	return item, nil
}
