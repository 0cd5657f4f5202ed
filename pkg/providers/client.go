package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Timeouts groups the per-phase timeout configuration named in §6
// (timeouts.{streaming,non_streaming,caching}.{connect,read,pool}_timeout).
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
	Pool    time.Duration
}

// Client performs a single outbound HTTP attempt against one Provider.
// Unlike the teacher's HTTPProvider, Client never retries internally —
// failover across providers is the Request Orchestrator's job (§7: "Retry
// logic is not a separate layer: failover IS the retry").
type Client struct {
	httpClient *http.Client
}

// NewClient builds a Client whose transport is tuned for connection reuse
// across many short-lived upstream calls, optionally routed through a
// per-provider outbound proxy.
func NewClient(proxyURL string, poolTimeout time.Duration) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if poolTimeout > 0 {
		transport.ResponseHeaderTimeout = poolTimeout
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy_url %q: %w", proxyURL, err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &Client{httpClient: &http.Client{Transport: transport}}, nil
}

// Do issues a single HTTP request with the given body and headers, honoring
// connect/read timeouts via the supplied context deadline. It never retries
// and never inspects the response body — callers classify the outcome.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Phase: "connect"}
		}
		return nil, &ProviderError{Message: err.Error(), Cause: err}
	}
	return resp, nil
}

// CloseIdleConnections releases pooled connections, used on provider
// teardown during reload.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// ParseRetryAfter parses a Retry-After header, supporting both
// delay-seconds and HTTP-date forms.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
