package gramgyan

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Health reports the aggregated server health. A degraded or failing server
// answers 503; that still yields a HealthStatus and a nil error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusServiceUnavailable:
		if err = decodeBody(resp, &hs); err != nil {
			return HealthStatus{}, fmt.Errorf("health: %w", err)
		}
		return hs, nil
	default:
		err = readAPIError(resp)
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
}
