package swift

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/swiftkit/auth"
	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/httpclient"
	"github.com/kbukum/swiftkit/logger"
	"github.com/kbukum/swiftkit/observability"
)

// maxAuthRetries bounds the 401 replays of one request.
const maxAuthRetries = 1

// RequestOptions describes the variable parts of a request.
type RequestOptions struct {
	// Query parameters appended to the URL.
	Query map[string]string
	// Headers sent with the request. Keys are compared case-insensitively.
	// X-Auth-Token and Accept are always set by the client.
	Headers http.Header
	// Body is nil, []byte, string or an io.ReadSeeker.
	Body any
	// Chunked sends the body with chunked transfer encoding.
	Chunked bool
}

// attemptResult is what one dispatch of a request produced.
type attemptResult struct {
	status int
	text   string
	header http.Header
}

type dispatchFunc func(ctx context.Context, req httpclient.Request) (attemptResult, error)

// Request sends method {storage_url}{path} and returns the response. Any
// status outside 2xx/3xx fails with a ResponseError; a single 401 is
// recovered by re-authenticating and replaying the request.
func (c *Client) Request(ctx context.Context, method, path string, ro *RequestOptions) (*Response, error) {
	var out *Response
	err := c.send(ctx, method, path, ro, func(ctx context.Context, req httpclient.Request) (attemptResult, error) {
		resp, err := c.http.Do(ctx, req)
		if err != nil {
			return attemptResult{}, err
		}
		out = resp
		return attemptResult{status: resp.StatusCode, text: resp.Status, header: resp.Headers}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RequestStream is Request with the response body left unread. The caller
// must close the returned response.
func (c *Client) RequestStream(ctx context.Context, method, path string, ro *RequestOptions) (*StreamResponse, error) {
	var out *StreamResponse
	err := c.send(ctx, method, path, ro, func(ctx context.Context, req httpclient.Request) (attemptResult, error) {
		resp, err := c.http.DoStream(ctx, req)
		if err != nil {
			return attemptResult{}, err
		}
		if !resp.IsSuccess() {
			_ = resp.Close()
		} else {
			out = resp
		}
		return attemptResult{status: resp.StatusCode, text: resp.Status, header: resp.Headers}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method, path string, ro *RequestOptions, dispatch dispatchFunc) error {
	if ro == nil {
		ro = &RequestOptions{}
	}
	body, err := newReplayableBody(ro.Body)
	if err != nil {
		return err
	}
	headers := normalizeHeaders(ro.Headers)
	if headers.Get("X-Trans-Id-Extra") == "" {
		headers.Set("X-Trans-Id-Extra", uuid.NewString())
	}

	ctx, op := observability.StartOperation(ctx, observability.SpanRequest,
		attribute.String(observability.AttrMethod, method),
		attribute.String(observability.AttrPath, path),
	)

	for attempt := 0; ; attempt++ {
		sess := c.Session()
		res, err := c.attempt(ctx, method, path, ro, headers, body, sess, dispatch)
		if err != nil {
			op.End(err)
			return err
		}
		op.SetAttributes(
			attribute.Int(observability.AttrStatusCode, res.status),
			attribute.Int(observability.AttrAttempt, attempt),
		)

		fields := logger.Fields(
			logger.FieldMethod, method,
			logger.FieldPath, path,
			logger.FieldStatus, res.status,
			logger.FieldAttempt, attempt,
			logger.FieldTransID, res.header.Get("X-Trans-Id"),
		)

		if res.status == http.StatusUnauthorized && attempt < maxAuthRetries {
			c.log.Info("token rejected, re-authenticating", fields)
			c.metrics.RecordReauth(ctx)
			if err := c.reauthenticate(ctx, sess); err != nil {
				op.End(err)
				return err
			}
			continue
		}

		if res.status < 200 || res.status >= 400 {
			respErr := errors.Response(res.status, res.text)
			if id := res.header.Get("X-Trans-Id"); id != "" {
				respErr = respErr.WithDetail("trans_id", id)
			}
			c.log.Debug("request failed", fields)
			c.metrics.RecordError(ctx, string(errors.ErrCodeResponse), "swift")
			op.End(respErr)
			return respErr
		}

		c.log.Debug("request completed", fields)
		op.End(nil)
		return nil
	}
}

// attempt dispatches the request once with the given session.
func (c *Client) attempt(ctx context.Context, method, path string, ro *RequestOptions, headers http.Header,
	body *replayableBody, sess auth.Session, dispatch dispatchFunc) (attemptResult, error) {
	r, err := body.reader()
	if err != nil {
		return attemptResult{}, err
	}

	h := headers.Clone()
	h.Set("X-Auth-Token", sess.Token)
	h.Set("Accept", "application/json")

	start := time.Now()
	res, err := dispatch(ctx, httpclient.Request{
		Method:  method,
		URL:     sess.StorageURL + path,
		Query:   ro.Query,
		Headers: h,
		Body:    r,
		Chunked: ro.Chunked,
	})
	c.metrics.RecordRequest(ctx, method, res.status, time.Since(start))
	if err != nil {
		c.log.Warn("request failed", logger.Fields(
			logger.FieldMethod, method,
			logger.FieldPath, path,
			logger.FieldError, err.Error(),
		))
		return attemptResult{}, err
	}
	if res.header == nil {
		res.header = http.Header{}
	}
	return res, nil
}

// normalizeHeaders returns a copy of h with keys in canonical form. When
// several spellings of one key are present, the spelling that sorts last
// wins.
func normalizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out[http.CanonicalHeaderKey(strings.TrimSpace(k))] = slices.Clone(h[k])
	}
	return out
}
