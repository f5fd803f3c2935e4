// Package client is a small consumer of the site-manager API used by
// internal tooling: a typed HTTP client plus a list controller that mirrors
// how the back-office grid pages through results.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a running site-manager instance.
type Client struct {
	baseURL   string
	authToken string
	hc        *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Client)

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient swaps the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// List fetches one page of a grid endpoint using the _start/_end convention
// and returns the page plus the X-Total-Count value.
func List[T any](ctx context.Context, c *Client, path string, query url.Values, start, end int) ([]T, int, error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("_start", strconv.Itoa(start))
	q.Set("_end", strconv.Itoa(end))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("can't build list request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("list request returned status %d", resp.StatusCode)
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, 0, fmt.Errorf("can't decode list response: %w", err)
	}

	total := len(items)
	if raw := resp.Header.Get("X-Total-Count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			total = n
		}
	}

	return items, total, nil
}
