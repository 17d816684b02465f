// Package exchange implements one public-ticker adapter per supported
// exchange. Every adapter issues exactly one GET request and normalises the
// exchange-specific response into a domain.Quote. Failures never produce a
// partially-populated quote.
package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// DefaultTimeout bounds a fetch when the caller does not configure one.
const DefaultTimeout = 8 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client is the HTTP transport shared by every adapter. It never retries.
type Client struct {
	httpClient *http.Client
	userAgent  string
	now        func() time.Time
}

// NewClient creates a Client whose requests are bounded by timeout. A
// non-positive timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		now:       time.Now,
	}
}

// get issues a single GET request and returns the response body. Network
// errors, timeouts and non-2xx statuses are reported as ErrTransientFetch.
func (c *Client) get(ctx context.Context, ex domain.Exchange, symbol, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Exchange: ex, Symbol: symbol, Kind: domain.ErrTransientFetch, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Exchange: ex, Symbol: symbol, Kind: domain.ErrTransientFetch, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &domain.FetchError{Exchange: ex, Symbol: symbol, Kind: domain.ErrTransientFetch, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(snippet))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Exchange: ex, Symbol: symbol, Kind: domain.ErrTransientFetch, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}
