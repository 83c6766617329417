package swift

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/swiftkit/auth"
	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/httpclient"
	"github.com/kbukum/swiftkit/logger"
	"github.com/kbukum/swiftkit/observability"
	"github.com/kbukum/swiftkit/version"
)

// Response is a fully read response.
type Response = httpclient.Response

// StreamResponse is a response with an unread body. Close it when done.
type StreamResponse = httpclient.StreamResponse

// Client talks to one account. It is safe for concurrent use.
type Client struct {
	opts    config.Options
	http    *httpclient.Adapter
	auth    *auth.Authenticator
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time

	mu      sync.RWMutex
	session auth.Session
	reauth  singleflight.Group
}

type clientOptions struct {
	log        *logger.Logger
	httpConfig httpclient.Config
	metrics    *observability.Metrics
	now        func() time.Time
}

// Option configures a Client.
type Option func(*clientOptions)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *logger.Logger) Option {
	return func(o *clientOptions) { o.log = log }
}

// WithHTTPConfig sets the transport configuration. A zero Timeout falls
// back to Options.Timeout.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(o *clientOptions) { o.httpConfig = cfg }
}

// WithTransport sets the round tripper used for every request.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.httpConfig.Transport = rt }
}

// WithMetrics records metrics on m instead of the global meter.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithClock sets the clock used for temp URL expiry.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) { o.now = now }
}

// New validates opts and authenticates. Invalid options fail with an
// OptionError before any network call.
func New(ctx context.Context, opts config.Options, options ...Option) (*Client, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	co := clientOptions{now: time.Now}
	for _, o := range options {
		o(&co)
	}
	if co.log == nil {
		co.log = logger.NewNop()
	}
	if co.metrics == nil {
		co.metrics = observability.DefaultMetrics()
	}

	hc := co.httpConfig
	if hc.Timeout == 0 {
		hc.Timeout = opts.Timeout
	}
	if hc.UserAgent == "" {
		hc.UserAgent = version.UserAgent()
	}
	adapter, err := httpclient.New(hc)
	if err != nil {
		return nil, errors.Option("invalid http config").WithCause(err)
	}

	c := &Client{
		opts:    opts,
		http:    adapter,
		log:     co.log.WithComponent("swift"),
		metrics: co.metrics,
		now:     co.now,
	}
	c.auth = auth.New(opts, adapter, co.log, auth.WithMetrics(co.metrics))

	sess, err := c.auth.Authenticate(ctx, auth.Session{})
	if err != nil {
		return nil, err
	}
	c.session = sess
	return c, nil
}

// Options returns the options the client was built with, defaults applied.
func (c *Client) Options() config.Options {
	return c.opts
}

// Session returns the current credentials.
func (c *Client) Session() auth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// AuthToken returns the current auth token.
func (c *Client) AuthToken() string {
	return c.Session().Token
}

// StorageURL returns the current storage URL.
func (c *Client) StorageURL() string {
	return c.Session().StorageURL
}

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	return c.http.Close(ctx)
}

// reauthenticate replaces the session that failed. Concurrent callers that
// saw the same failed token share one authentication.
func (c *Client) reauthenticate(ctx context.Context, failed auth.Session) error {
	_, err, _ := c.reauth.Do(failed.Token, func() (any, error) {
		current := c.Session()
		if current.Token != failed.Token {
			return nil, nil
		}
		next, err := c.auth.Authenticate(ctx, current)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.session = next
		c.mu.Unlock()
		return nil, nil
	})
	return err
}
