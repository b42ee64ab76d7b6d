package api

import "context"

func (c *Client) Analytics(ctx context.Context) (Analytics, error) {
	var out Analytics
	err := c.doJSON(ctx, "GET", "/analytics", nil, nil, &out)
	return out, err
}

// Health pings the backend root; used by doctor and startup checks.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/health", nil, nil, nil)
}
