// Package client talks to a remote pricing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/staggered-pricing/internal/pricing"
	"github.com/noah-isme/staggered-pricing/internal/quote"
)

// APIError is a non-2xx answer from the pricing API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("pricing api: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("pricing api: %s: %s", e.Code, e.Message)
}

// Client calls the /api/v1/pricing endpoints.
type Client struct {
	baseURL     string
	http        *http.Client
	maxAttempts int
	baseBackoff time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithRetry sets how many times a request is tried on transport errors and
// 5xx answers, and the first backoff between tries.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.baseBackoff = base
	}
}

// New returns a Client for baseURL. Requests carry trace context through an
// instrumented transport.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxAttempts: 3,
		baseBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 1
	}
	return c
}

// Quote solves cfg on the server.
func (c *Client) Quote(ctx context.Context, cfg pricing.Config) (quote.Quote, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("encode config: %w", err)
	}
	var out quote.Quote
	err = c.do(ctx, http.MethodPost, "/api/v1/pricing/quote", body, &out)
	return out, err
}

// Defaults fetches the server's default configuration.
func (c *Client) Defaults(ctx context.Context) (pricing.Config, error) {
	var out pricing.Config
	err := c.do(ctx, http.MethodGet, "/api/v1/pricing/defaults", nil, &out)
	return out, err
}

// do sends the request, retrying with exponential backoff. Quotes are pure
// functions of the config, so every call is safe to repeat.
func (c *Client) do(ctx context.Context, method, path string, body []byte, dst any) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		status, data, err := c.send(ctx, method, path, body)
		switch {
		case err != nil:
			lastErr = err
		case status >= http.StatusInternalServerError:
			lastErr = decodeError(status, data)
		case status >= http.StatusBadRequest:
			return decodeError(status, data)
		default:
			envelope := struct {
				Data any `json:"data"`
			}{Data: dst}
			if err := json.Unmarshal(data, &envelope); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		if attempt == c.maxAttempts {
			break
		}
		timer := time.NewTimer(backoff(c.baseBackoff, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// backoff doubles base for every attempt after the first, with up to 20%
// jitter either way.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	jitter := (rand.Float64()*2 - 1) * 0.2 * float64(d)
	return d + time.Duration(jitter)
}

func decodeError(status int, data []byte) error {
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}
	apiErr.Code = envelope.Error.Code
	apiErr.Message = envelope.Error.Message
	apiErr.Details = envelope.Error.Details
	return apiErr
}
