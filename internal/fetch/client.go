package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// userAgent is sent with every request; some public status APIs reject
// requests without one.
const userAgent = "serverboard/1.0 (+https://github.com/jpalmerr/serverboard)"

// connection pooling limits; every cycle hits the same one or two hosts
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// ErrUnexpectedStatus is wrapped by [Response.Err] for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed before
	// receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport error. nil means a response was received,
	// whatever its status code.
	Error error
}

// Err returns the transport error, or an error wrapping [ErrUnexpectedStatus]
// when the status code is not 2xx.
func (r Response) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, r.StatusCode)
	}
	return nil
}

// Client is an HTTP client wrapper for manifest and status lookups.
//
// Client applies timeouts per request via context rather than globally. A
// zero timeout means the request may run as long as its parent context.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a [Client] with a pooled transport.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Fetch performs a GET request and returns a structured [Response].
//
// Fetch always returns a Response; errors are captured in the Error field.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// GetJSON fetches url and decodes the JSON body into v.
//
// Transport failures, non-2xx responses and bodies that are not valid JSON
// are all reported as errors.
func (c *Client) GetJSON(ctx context.Context, url string, timeout time.Duration, v any) error {
	resp := c.Fetch(ctx, url, nil, timeout)
	if err := resp.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Close closes idle connections in the pool. Safe to call multiple times
// and on a nil receiver; the client stays usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
