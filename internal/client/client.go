// Package client issues embedding requests against an OpenAI-compatible
// /v1/embeddings endpoint and measures per-request wall-clock latency.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout is the per-request upper bound. It is deliberately generous:
// large batches at high concurrency can queue for minutes server-side, and a
// timeout is recorded as a failure rather than aborting the sweep.
const DefaultTimeout = 5 * time.Minute

// RequestError indicates the server returned a non-success status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("embedding request failed with status %d: %s", e.StatusCode, e.Body)
}

// embeddingRequest is the JSON body for POST /v1/embeddings.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// Client sends embedding requests to a single endpoint/model pair.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the total per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxConns sizes the connection pool. The transport must admit at least
// as many connections as the dispatcher has in-flight requests, otherwise
// transport-level queueing would masquerade as dispatcher concurrency
// limiting.
func WithMaxConns(n int) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport.(*http.Transport)
		transport.MaxConnsPerHost = n
		transport.MaxIdleConns = n
		transport.MaxIdleConnsPerHost = n
	}
}

// New creates a client for the given base URL and model.
func New(baseURL, model string, options ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		baseURL: baseURL,
		model:   model,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Embed posts one embedding request carrying texts and returns the round-trip
// wall-clock latency in milliseconds, measured from just before the request
// is sent to just after the response body is fully consumed. The returned
// count is the number of embeddings in the response (from data.#); the
// payload is otherwise discarded.
func (c *Client) Embed(ctx context.Context, texts []string) (float64, int64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return 0, 0, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	latencyMs := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		return 0, 0, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	count := gjson.GetBytes(respBody, "data.#").Int()

	return latencyMs, count, nil
}
