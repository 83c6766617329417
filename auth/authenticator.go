package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/swiftkit/cache"
	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/httpclient"
	"github.com/kbukum/swiftkit/logger"
	"github.com/kbukum/swiftkit/observability"
)

// Doer sends a single HTTP request. *httpclient.Adapter implements it.
type Doer interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

// Authenticator runs the configured identity protocol.
type Authenticator struct {
	opts    config.Options
	version int
	digest  string
	store   cache.Store
	http    Doer
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithMetrics records authentication and cache metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

// New creates an Authenticator for opts. opts should already have defaults
// applied and be validated. A nil log discards output.
func New(opts config.Options, transport Doer, log *logger.Logger, options ...Option) *Authenticator {
	if log == nil {
		log = logger.NewNop()
	}
	store := opts.Cache
	if store == nil {
		store = cache.Null{}
	}
	a := &Authenticator{
		opts:    opts,
		version: opts.ResolvedAuthVersion(),
		digest:  Digest(opts),
		store:   store,
		http:    transport,
		log:     log.WithComponent("auth"),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// Version returns the protocol version in use.
func (a *Authenticator) Version() int { return a.version }

// Digest returns the identity digest used in cache keys.
func (a *Authenticator) Digest() string { return a.digest }

// Authenticate returns the next session. A cached session is adopted when
// its token differs from current's; otherwise the identity service is asked
// and the result is written to the cache.
func (a *Authenticator) Authenticate(ctx context.Context, current Session) (Session, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanAuthenticate,
		attribute.Int(observability.AttrAuthVersion, a.version))

	if sess, ok := a.fromCache(ctx, current); ok {
		op.SetAttributes(attribute.Bool(observability.AttrCacheHit, true))
		op.End(nil)
		a.metrics.RecordAuthentication(ctx, a.version, "cached")
		a.log.Debug("adopted cached session", logger.Fields(logger.FieldAuthVersion, a.version))
		return sess, nil
	}

	sess, err := a.exchange(ctx)
	d := op.End(err)
	if err != nil {
		a.metrics.RecordAuthentication(ctx, a.version, "error")
		a.log.Warn("authentication failed", logger.Fields(
			logger.FieldAuthVersion, a.version,
			logger.FieldError, err.Error(),
		))
		return Session{}, err
	}

	a.metrics.RecordAuthentication(ctx, a.version, "ok")
	a.log.Info("authenticated", logger.Fields(
		logger.FieldAuthVersion, a.version,
		logger.FieldDuration, d.Milliseconds(),
	))
	a.toCache(ctx, sess)
	return sess, nil
}

func (a *Authenticator) exchange(ctx context.Context) (Session, error) {
	switch a.version {
	case config.AuthV1:
		return a.authenticateV1(ctx)
	case config.AuthV2:
		return a.authenticateV2(ctx)
	case config.AuthV3:
		return a.authenticateV3(ctx)
	default:
		return Session{}, errors.Authentication("unsupported auth version %d", a.version)
	}
}

// fromCache reads both cache keys. Read failures count as a miss.
func (a *Authenticator) fromCache(ctx context.Context, current Session) (Session, bool) {
	token, ok, err := a.store.Get(ctx, cache.TokenKey(a.digest))
	if err != nil {
		a.metrics.RecordCacheError(ctx)
		a.log.Warn("cache read failed", logger.ErrorFields("cache_get", err))
		return Session{}, false
	}
	if !ok || token == "" {
		a.metrics.RecordCacheLookup(ctx, false)
		return Session{}, false
	}
	storageURL, ok, err := a.store.Get(ctx, cache.StorageURLKey(a.digest))
	if err != nil {
		a.metrics.RecordCacheError(ctx)
		a.log.Warn("cache read failed", logger.ErrorFields("cache_get", err))
		return Session{}, false
	}
	if !ok || storageURL == "" {
		a.metrics.RecordCacheLookup(ctx, false)
		return Session{}, false
	}

	// Never hand back the token that just failed.
	if token == current.Token {
		a.metrics.RecordCacheLookup(ctx, false)
		return Session{}, false
	}
	a.metrics.RecordCacheLookup(ctx, true)
	return Session{Token: token, StorageURL: storageURL}, true
}

func (a *Authenticator) toCache(ctx context.Context, sess Session) {
	if err := a.store.Set(ctx, cache.TokenKey(a.digest), sess.Token); err != nil {
		a.log.Warn("cache write failed", logger.ErrorFields("cache_set", err))
		return
	}
	if err := a.store.Set(ctx, cache.StorageURLKey(a.digest), sess.StorageURL); err != nil {
		a.log.Warn("cache write failed", logger.ErrorFields("cache_set", err))
	}
}

// requireFields fails with "<name> missing" for the first empty value.
func requireFields(fields ...[2]string) error {
	for _, f := range fields {
		if f[1] == "" {
			return errors.Authentication("%s missing", f[0])
		}
	}
	return nil
}

func (a *Authenticator) postJSON(ctx context.Context, url string, payload any) (*httpclient.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Authentication("encode request").WithCause(err)
	}
	resp, err := a.http.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     url,
		Headers: http.Header{"Content-Type": {"application/json"}},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, errors.Authentication("identity request failed").WithCause(err)
	}
	if !resp.IsSuccess() {
		return nil, errors.AuthenticationStatus(resp.StatusCode, resp.Status)
	}
	return resp, nil
}

func trimURL(u string) string {
	return strings.TrimRight(u, "/")
}
