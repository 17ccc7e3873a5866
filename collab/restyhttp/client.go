// Package restyhttp provides an HTTPClient implementation on top of resty.
package restyhttp

import (
	"context"
	"strings"

	"resty.dev/v3"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Client implements api.HTTPClient using a shared resty client.
type Client struct {
	rc *resty.Client
}

var _ api.HTTPClient = (*Client)(nil)

// New creates a Client with default settings.
func New() *Client {
	return &Client{rc: resty.New()}
}

// NewWithClient wraps an existing resty client, letting hosts configure
// retries, proxies, or TLS themselves.
func NewWithClient(rc *resty.Client) *Client {
	return &Client{rc: rc}
}

// Close releases the underlying transport resources.
func (c *Client) Close() error {
	return c.rc.Close()
}

// Request performs one HTTP call. Per-request timeouts come from the
// request; map and slice bodies are serialized as JSON.
func (c *Client) Request(ctx context.Context, req api.HTTPRequest) (*api.HTTPResponse, error) {
	r := c.rc.R().SetContext(ctx)

	if req.Timeout > 0 {
		r.SetTimeout(req.Timeout)
	}
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "GET"
	}

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header()))
	for k := range resp.Header() {
		headers[k] = resp.Header().Get(k)
	}

	return &api.HTTPResponse{
		StatusCode: resp.StatusCode(),
		Headers:    headers,
		Body:       resp.String(),
	}, nil
}
