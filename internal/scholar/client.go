// Package scholar provides a rate-limited Semantic Scholar search client,
// a lazy candidate stream, and best-match selection over that stream.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Semantic Scholar Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 1 request per second per Semantic Scholar documentation.
	RateLimit = 1.0

	// SourceTag identifies this client in record provenance.
	SourceTag = "s2"

	// DefaultSearchFields are the fields requested for search results.
	DefaultSearchFields = "title,authors,year,venue,citationCount,url"

	// DefaultPageSize is the number of results fetched per page. The stream
	// pulls pages lazily, so match selection rarely needs more than one.
	DefaultPageSize = 10
)

// CandidateSource yields search candidates one at a time. Next returns
// ErrExhausted once the sequence ends; any other error is a transport or
// API failure.
type CandidateSource interface {
	Next(ctx context.Context) (*Candidate, error)
}

// Client is a rate-limited HTTP client for the Semantic Scholar Graph API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	pageSize   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

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

// WithPageSize sets the number of results fetched per page.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a new Semantic Scholar API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		pageSize:   DefaultPageSize,
	}

	// Check for API key in environment
	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SourceTag returns the provenance tag for records produced by this client.
func (c *Client) SourceTag() string {
	return SourceTag
}

// Search returns a lazy candidate stream for the query. No request is made
// until the first Next call.
func (c *Client) Search(ctx context.Context, query string) CandidateSource {
	return &searchStream{client: c, query: query}
}

// searchPage holds one page of the search response.
type searchPage struct {
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
	Next   int         `json:"next"`
	Data   []Candidate `json:"data"`
}

// fetchPage issues one paged search request.
func (c *Client) fetchPage(ctx context.Context, query string, offset int) (*searchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fields", DefaultSearchFields)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(c.pageSize))

	reqURL := c.baseURL + "/paper/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return nil, fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	}
	if resp.StatusCode == 429 {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}

	return &page, nil
}

// searchStream pulls search result pages lazily and yields one candidate per
// Next call. Errors are sticky: after a failure every Next returns it.
type searchStream struct {
	client *Client
	query  string
	buf    []Candidate
	pos    int
	offset int
	done   bool
	err    error
}

// Next returns the next candidate, ErrExhausted at the natural end of the
// result sequence, or the underlying transport/API error.
func (s *searchStream) Next(ctx context.Context) (*Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}

	for s.pos >= len(s.buf) {
		if s.done {
			s.err = ErrExhausted
			return nil, s.err
		}

		page, err := s.client.fetchPage(ctx, s.query, s.offset)
		if err != nil {
			s.err = err
			return nil, err
		}

		s.buf = page.Data
		s.pos = 0
		if page.Next > s.offset && len(page.Data) > 0 {
			s.offset = page.Next
		} else {
			s.done = true
		}
	}

	cand := &s.buf[s.pos]
	s.pos++
	return cand, nil
}
