package api

import "context"

// GetAnalytics retrieves aggregate dashboard metrics.
func (c *Client) GetAnalytics(ctx context.Context) (*Analytics, error) {
	var result Analytics
	if err := c.doJSON(ctx, "GET", "/analytics", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
