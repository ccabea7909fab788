package api

import "context"

// GetStatus fetches the current game server status.
func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get(ctx, "/api/v1/server/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
