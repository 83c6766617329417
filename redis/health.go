package redis

import (
	"context"

	"github.com/kbukum/swiftkit/observability"
)

var _ observability.HealthChecker = (*Client)(nil)

// CheckHealth reports the token cache as degraded when Redis does not answer
// a ping. Clients keep working without the cache, so it is never down.
func (c *Client) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "redis", Details: map[string]string{"addr": c.cfg.Addr}}
	if err := c.Ping(ctx); err != nil {
		h.Status = observability.HealthStatusDegraded
		h.Message = err.Error()
		return h
	}
	h.Status = observability.HealthStatusUp
	return h
}
