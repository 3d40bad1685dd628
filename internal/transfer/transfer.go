// Package transfer submits data to remote endpoints over HTTP.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the outcome of a completed submission.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the server answered with a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends raw data to URLs. The zero value is not usable; use
// NewClient.
type Client struct {
	http *http.Client

	// MaxBodyBytes caps how much of the response body is retained.
	MaxBodyBytes int64
}

// NewClient returns a Client with a 30 second request timeout.
func NewClient() *Client {
	return &Client{
		http:         &http.Client{Timeout: 30 * time.Second},
		MaxBodyBytes: 1 << 20,
	}
}

// Send POSTs data to url and returns the server's response. A network
// or transport failure is an error; a non-2xx status is not — the
// caller sees the status and decides.
func (c *Client) Send(ctx context.Context, data []byte, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("sending to %s: %w", url, err)
	}
	defer resp.Body.Close()

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Response{}, fmt.Errorf("reading response from %s: %w", url, err)
	}

	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}
