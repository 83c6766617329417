package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Adapter sends requests over a shared *http.Client.
type Adapter struct {
	httpClient *http.Client
	config     Config
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// Do executes an HTTP request and returns the complete response, whatever its status.
func (c *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.send(ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// DoStream executes an HTTP request and returns the response with its body
// unread. The caller must close the returned StreamResponse. The configured
// timeout does not apply; the context bounds the transfer.
func (c *Adapter) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := c.send(ctx, streamClient, req)
	if err != nil {
		return nil, err
	}
	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Headers:    resp.Header,
		Body:       resp.Body,
	}, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Adapter) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle connections.
func (c *Adapter) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Adapter) send(ctx context.Context, hc *http.Client, req Request) (*http.Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	return resp, nil
}

// buildRequest constructs an *http.Request from the adapter config and request.
func (c *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, wrapBody(req.Body))
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	// Apply query parameters
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	// Apply default headers
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	// Apply request-specific headers (override defaults)
	for k, vs := range req.Headers {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if req.Chunked && httpReq.Body != nil {
		httpReq.ContentLength = -1
		httpReq.TransferEncoding = []string{"chunked"}
	}

	return httpReq, nil
}

// wrapBody keeps net/http from closing caller-owned bodies. In-memory
// readers are passed through so the Content-Length is known.
func wrapBody(body io.Reader) io.Reader {
	switch body.(type) {
	case nil:
		return nil
	case *bytes.Reader, *bytes.Buffer, *strings.Reader:
		return body
	}
	if _, ok := body.(io.Closer); ok {
		return io.NopCloser(struct{ io.Reader }{body})
	}
	return io.NopCloser(body)
}

// statusText strips the numeric code from resp.Status.
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
