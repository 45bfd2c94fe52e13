// Package netcheck checks whether the attendance portal is reachable.
package netcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single reachability check.
const DefaultTimeout = 5 * time.Second

// Checker reports connectivity.
type Checker interface {
	Online(ctx context.Context) bool
}

// HTTPChecker issues a GET to the portal root. Any HTTP response counts as online.
type HTTPChecker struct {
	url    string
	client *http.Client
}

func NewHTTPChecker(url string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Online implements Checker.
func (c *HTTPChecker) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		slog.Error("Network check request invalid", "url", c.url, "error", err)
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("Network check failed", "url", c.url, "error", err)
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return true
}
