package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, HEAD, PUT, POST, DELETE).
	Method string
	// URL is the absolute request URL. It may already carry a query string.
	URL string
	// Query are URL query parameters merged into URL's query.
	Query map[string]string
	// Headers are request headers, applied after the configured defaults.
	Headers http.Header
	// Body is the request body. The adapter never closes it.
	Body io.Reader
	// Chunked sends the body with chunked transfer encoding and no Content-Length.
	Chunked bool
}

// Response is a fully read HTTP response.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the reason phrase sent by the server, e.g. "Not Found".
	Status string
	// Headers are the response headers.
	Headers http.Header
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true for 2xx and 3xx status codes.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("httpclient: decode response: %w", err)
	}
	return nil
}

// StreamResponse is an HTTP response whose body has not been read.
type StreamResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the reason phrase sent by the server.
	Status string
	// Headers are the response headers.
	Headers http.Header
	// Body is the unread response body. Close releases the connection.
	Body io.ReadCloser
}

// IsSuccess returns true for 2xx and 3xx status codes.
func (r *StreamResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// Close releases the response body.
func (r *StreamResponse) Close() error {
	if r.Body != nil {
		return r.Body.Close()
	}
	return nil
}
