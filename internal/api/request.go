package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/craquehouse/vintagestory-server-sub000/internal/version"
)

// APIError is a non-2xx response from the admin API. Message carries
// the server's own error text when the body is the usual
// {"error": "..."} envelope, falling back to the HTTP status text.
// Body keeps the raw response for callers that want more.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may be retried: server-side
// failures and throttling, never auth or client errors.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// errorBody is the admin API's error envelope. Older server builds use
// "message" instead of "error".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *APIError {
	msg := http.StatusText(status)
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Message != "":
			msg = eb.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg, Body: body}
}

// get issues a GET with retries and decodes the JSON response into
// result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, result)
}

// post issues a POST with retries. A nil payload still sends an empty
// JSON object so the endpoint always sees a well-formed body.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	if payload == nil {
		payload = struct{}{}
	}
	return c.call(ctx, http.MethodPost, path, nil, payload, result)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, result any) error {
	body, err := c.withRetry(ctx, method, path, func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, query, payload)
	})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// roundTrip performs one HTTP exchange and maps non-2xx responses to
// *APIError.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vs-logtail/"+version.Version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// withRetry runs fn with exponential backoff and jitter until it
// succeeds, fails with a non-retryable error, or exhausts the budget.
func (c *Client) withRetry(ctx context.Context, method, path string, fn func() ([]byte, error)) ([]byte, error) {
	delay := c.retryBackoff
	for attempt := 0; ; attempt++ {
		body, err := fn()
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
		if attempt == c.maxRetries {
			return nil, fmt.Errorf("%s %s: retries exhausted: %w", method, path, err)
		}

		// Jittered wait in [delay/2, delay*1.5).
		wait := delay/2 + time.Duration(rand.Int64N(int64(delay)))
		c.logger.Debug("retrying admin api request",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"wait", wait,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
