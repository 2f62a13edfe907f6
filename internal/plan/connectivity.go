package plan

import (
	"context"
	"net/http"
	"time"
)

// HTTPChecker reports connectivity by probing a URL. Any response, even an
// error status, counts as online.
type HTTPChecker struct {
	url     string
	client  *http.Client
	offline bool
}

// NewHTTPChecker creates a checker. When offline is set, IsOnline always
// reports false without probing.
func NewHTTPChecker(url string, timeout time.Duration, offline bool) *HTTPChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPChecker{url: url, client: &http.Client{Timeout: timeout}, offline: offline}
}

// IsOnline implements ConnectivityChecker.
func (c *HTTPChecker) IsOnline(ctx context.Context) bool {
	if c.offline || c.url == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
