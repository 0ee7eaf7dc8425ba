package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// maxResponseBodyBytes limits the size of fetched page responses
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// userAgents is rotated across requests so repeated queries do not present
// a single fingerprint to every marketplace.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Client fetches raw marketplace pages over HTTP. It implements
// domain.Fetcher and never parses what it retrieves.
type Client struct {
	httpClient *http.Client
	uaCounter  atomic.Uint32
	debug      bool
}

// NewClient creates a fetch client. The timeout is a hard per-request cap;
// callers normally pass a tighter deadline through the context.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Fetch retrieves the page at url and returns its body. Failures come back
// as *domain.FetchError classified as timeout, network or HTTP status.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &domain.FetchError{URL: url, Kind: domain.FetchNetwork, Err: err}
	}
	c.setHeaders(req)

	if c.debug {
		log.Printf("[FETCH] GET %s", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.FetchError{
			URL:    url,
			Kind:   domain.FetchHTTP,
			Status: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return "", classify(url, fmt.Errorf("reading body: %w", err))
	}

	return string(body), nil
}

// setHeaders applies browser-like headers with a rotating user agent
func (c *Client) setHeaders(req *http.Request) {
	ua := userAgents[int(c.uaCounter.Add(1)-1)%len(userAgents)]
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "max-age=0")
}

// classify maps a transport error onto the fetch error taxonomy
func classify(url string, err error) *domain.FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.FetchError{URL: url, Kind: domain.FetchTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &domain.FetchError{URL: url, Kind: domain.FetchTimeout, Err: err}
	default:
		return &domain.FetchError{URL: url, Kind: domain.FetchNetwork, Err: err}
	}
}
