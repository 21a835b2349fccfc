// Package crossref provides a minimal CrossRef works client used as the
// year-lookup fallback.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the CrossRef works API endpoint.
	BaseURL = "https://api.crossref.org/works"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// RateLimit is a conservative 2 requests per second; CrossRef asks
	// polite clients to stay well under their burst limits.
	RateLimit = 2.0

	// DefaultUserAgent identifies this client. CrossRef requires a
	// User-Agent header; appending a mailto moves requests to the polite pool.
	DefaultUserAgent = "citefill/1.0"
)

// Common errors returned by the CrossRef client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with CrossRef")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from CrossRef")
)

// Client is a rate-limited HTTP client for the CrossRef works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto appends a contact address to the User-Agent, which CrossRef uses
// to route requests to their polite pool.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) {
		if mailto != "" {
			c.userAgent = fmt.Sprintf("%s (mailto:%s)", DefaultUserAgent, mailto)
		}
	}
}

// NewClient creates a new CrossRef client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// worksResponse is the subset of the works payload the year lookup needs.
type worksResponse struct {
	Message struct {
		Items []struct {
			Issued struct {
				DateParts [][]int `json:"date-parts"`
			} `json:"issued"`
		} `json:"items"`
	} `json:"message"`
}

// LookupYear returns the publication year of the best-scoring work for the
// title, or 0 if CrossRef has no answer. A zero year with a nil error means
// "not found"; errors are reserved for transport and protocol failures.
func (c *Client) LookupYear(ctx context.Context, title string) (int, error) {
	if title == "" {
		return 0, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query.title", title)
	params.Set("rows", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	var works worksResponse
	if err := json.Unmarshal(body, &works); err != nil {
		return 0, fmt.Errorf("%w: parsing works: %v", ErrInvalidResponse, err)
	}

	items := works.Message.Items
	if len(items) == 0 {
		return 0, nil
	}

	parts := items[0].Issued.DateParts
	if len(parts) == 0 || len(parts[0]) == 0 {
		return 0, nil
	}

	return parts[0][0], nil
}
