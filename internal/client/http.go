// Package client fetches telemetry snapshots from the mission telemetry
// service over HTTP. Wire types live in telemetry; this package owns URL
// resolution, transport and the decoding policy for partial responses.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mission-control/telemetry/internal/telemetry"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// HTTPClient makes GET requests to the telemetry endpoint.
type HTTPClient struct {
	endpoint string
	strict   bool
	client   *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// WithStrictFields rejects responses with missing fields instead of
// filling them from the default snapshot.
func WithStrictFields() Option {
	return func(c *HTTPClient) { c.strict = true }
}

// NewHTTPClient creates a client for baseURL (e.g. "/api" or
// "http://127.0.0.1:8080/api"). Relative bases are resolved against origin.
func NewHTTPClient(baseURL, origin string, opts ...Option) (*HTTPClient, error) {
	endpoint, err := ResolveEndpoint(baseURL, origin)
	if err != nil {
		return nil, err
	}
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the resolved telemetry URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// FetchTelemetry performs one GET of the telemetry endpoint.
func (c *HTTPClient) FetchTelemetry(ctx context.Context) (telemetry.Snapshot, error) {
	body, err := c.get(ctx)
	if err != nil {
		return telemetry.Snapshot{}, err
	}
	return DecodeSnapshot(body, c.strict)
}

func (c *HTTPClient) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: GET %s: %d %s", ErrProtocol, c.endpoint, resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return body, nil
}
