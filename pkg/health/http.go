package health

import (
	"context"
	"net/http"
	"time"
)

// HTTPChecker checks reachability of an HTTP dependency (e.g. the Saleor API).
// Any HTTP response counts as up; only transport failures count as down.
type HTTPChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPChecker creates a health checker for the given URL.
func NewHTTPChecker(name, url string) *HTTPChecker {
	return &HTTPChecker{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Name returns the configured dependency name.
func (c *HTTPChecker) Name() string {
	return c.name
}

// Check issues a GET request to the dependency URL.
func (c *HTTPChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{Status: StatusDown, Message: err.Error()}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: StatusDown, Message: err.Error()}
	}
	defer resp.Body.Close()

	return Result{Status: StatusUp}
}
