package swift

import (
	"context"

	"github.com/kbukum/swiftkit/observability"
)

var _ observability.HealthChecker = (*Client)(nil)

// CheckHealth reports the account as up when a HEAD on it succeeds.
func (c *Client) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "swift"}
	resp, err := c.HeadAccount(ctx)
	if err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
		return h
	}
	h.Status = observability.HealthStatusUp
	h.Details = map[string]string{
		"containers": resp.Headers.Get("X-Account-Container-Count"),
		"objects":    resp.Headers.Get("X-Account-Object-Count"),
		"bytes_used": resp.Headers.Get("X-Account-Bytes-Used"),
	}
	return h
}
