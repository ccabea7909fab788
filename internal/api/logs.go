package api

import (
	"context"
	"fmt"
	"time"
)

// StreamToken is a short-lived credential for opening a log stream.
// Each WebSocket connection attempt must request its own token;
// tokens are single-use and never persisted.
type StreamToken struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// ListLogFiles fetches the log files available for streaming.
func (c *Client) ListLogFiles(ctx context.Context) ([]LogFile, error) {
	var resp LogFilesResponse
	if err := c.get(ctx, "/api/v1/logs/files", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// RequestStreamToken requests a short-lived WebSocket stream token.
func (c *Client) RequestStreamToken(ctx context.Context) (StreamToken, error) {
	var resp StreamTokenResponse
	if err := c.post(ctx, "/api/v1/logs/ws-token", nil, &resp); err != nil {
		return StreamToken{}, fmt.Errorf("request stream token: %w", err)
	}

	tok := StreamToken{
		Value: resp.Token,
		TTL:   time.Duration(resp.ExpiresInSeconds) * time.Second,
	}
	if resp.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		if err != nil {
			return StreamToken{}, fmt.Errorf("parse token expiry %q: %w", resp.ExpiresAt, err)
		}
		tok.ExpiresAt = expires
	}

	return tok, nil
}
