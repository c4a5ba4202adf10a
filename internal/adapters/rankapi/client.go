// Package rankapi reads domain samples from a remote /api/ranks endpoint.
package rankapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/rankscope/internal/domain/model"
	"github.com/okian/rankscope/pkg/metrics"
)

// RanksPath is the endpoint queried relative to the base URL.
const RanksPath = "/api/ranks"

// RanksResponse is the 200 body of /api/ranks.
type RanksResponse struct {
	Ranks []model.Sample `json:"ranks"`
}

// ErrorResponse is the non-200 body of /api/ranks.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client fetches samples over HTTP.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
}

// New returns a Client for base, e.g. "http://localhost:9080".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base }

// Samples returns the samples for domain between start and end. Every error
// wraps ErrReadFailure.
func (c *Client) Samples(ctx context.Context, domain, start, end string) ([]model.Sample, error) {
	began := time.Now()
	defer func() {
		metrics.RecordFetchLatency("remote", float64(time.Since(began).Milliseconds()))
	}()

	q := url.Values{}
	q.Set("domain", domain)
	q.Set("start_date", start)
	q.Set("end_date", end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+RanksPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailure, domain, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			return nil, fmt.Errorf("%w: failed to fetch data for %s", ErrReadFailure, domain)
		}
		return nil, fmt.Errorf("%w: %s", ErrReadFailure, body.Error)
	}

	var body RanksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrReadFailure, domain, err)
	}
	if body.Ranks == nil {
		return []model.Sample{}, nil
	}
	return body.Ranks, nil
}
