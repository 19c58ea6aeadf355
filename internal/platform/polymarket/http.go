// Package polymarket is the read-only client for the Polymarket catalog: the
// Gamma API (markets, events, tags, search) and the data API (trades).
package polymarket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/polylens/internal/domain"
)

const (
	// DefaultGammaURL is the Gamma API root.
	DefaultGammaURL = "https://gamma-api.polymarket.com"
	// DefaultDataURL is the data API root.
	DefaultDataURL = "https://data-api.polymarket.com"
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "polylens/1.0"

	defaultTimeout = 30 * time.Second
)

// FetchError reports a failed catalog call: transport, HTTP status or JSON
// decoding. Status failures wrap the matching domain sentinel.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return "polymarket: " + e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options tunes the HTTP behaviour shared by GammaClient and DataClient.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// restClient is the GET-only JSON transport shared by both API clients.
type restClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func newRestClient(baseURL string, opts Options) restClient {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  ua,
		httpClient: hc,
	}
}

// doGet sends an unauthenticated GET request and returns the body of a 2xx
// response.
func (c *restClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx responses to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := truncate(string(body), 256)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrBadResponse, statusCode, bodyStr)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ domain.Catalog     = (*GammaClient)(nil)
	_ domain.TradeSource = (*DataClient)(nil)
)
