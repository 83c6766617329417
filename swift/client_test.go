package swift

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/swiftkit/cache"
	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/observability"
	"github.com/kbukum/swiftkit/swifttest"
)

func newServer(t *testing.T, cfg swifttest.Config) *swifttest.Server {
	t.Helper()
	srv := swifttest.New(cfg, nil)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, opts config.Options, options ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), opts, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestNew_Protocols(t *testing.T) {
	srv := newServer(t, swifttest.Config{})

	tests := []struct {
		name    string
		opts    config.Options
		version int
	}{
		{"v1", srv.OptionsV1(), config.AuthV1},
		{"v2", srv.OptionsV2(), config.AuthV2},
		{"v3", srv.OptionsV3(), config.AuthV3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := srv.AuthCalls(tt.version)
			c := newClient(t, tt.opts)

			if got := c.StorageURL(); got != srv.StorageURL() {
				t.Errorf("StorageURL = %q, want %q", got, srv.StorageURL())
			}
			if c.AuthToken() == "" {
				t.Error("expected a token")
			}
			if got := srv.AuthCalls(tt.version) - before; got != 1 {
				t.Errorf("auth calls = %d, want 1", got)
			}
			if _, err := c.HeadAccount(context.Background()); err != nil {
				t.Errorf("HeadAccount: %v", err)
			}
		})
	}
}

func TestNew_MissingAuthURL(t *testing.T) {
	_, err := New(context.Background(), config.Options{Username: "u", APIKey: "k"})
	if !errors.HasCode(err, errors.ErrCodeAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if !strings.Contains(err.Error(), "auth_url missing") {
		t.Errorf("error = %q, want auth_url missing", err.Error())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	srv := newServer(t, swifttest.Config{})

	opts := srv.OptionsV1()
	opts.Interface = "private"
	_, err := New(context.Background(), opts)
	if !errors.HasCode(err, errors.ErrCodeOptionInvalid) {
		t.Fatalf("expected option error, got %v", err)
	}
	if n := srv.AuthCalls(0); n != 0 {
		t.Errorf("auth calls = %d, want 0", n)
	}
}

func TestNew_BadCredentials(t *testing.T) {
	srv := newServer(t, swifttest.Config{})

	opts := srv.OptionsV1()
	opts.APIKey = "wrong"
	_, err := New(context.Background(), opts)
	if !errors.HasCode(err, errors.ErrCodeAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestNew_SharedCache(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	store := cache.NewMemory()

	opts := srv.OptionsV3()
	opts.Cache = store
	first := newClient(t, opts)
	second := newClient(t, opts)

	if n := srv.AuthCalls(config.AuthV3); n != 1 {
		t.Errorf("auth calls = %d, want 1", n)
	}
	if first.AuthToken() != second.AuthToken() {
		t.Errorf("tokens differ: %q vs %q", first.AuthToken(), second.AuthToken())
	}
	if _, err := second.HeadAccount(context.Background()); err != nil {
		t.Errorf("HeadAccount with cached token: %v", err)
	}
}

func TestClient_ConcurrentReauthCollapses(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	srv.ExpireTokens()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.HeadAccount(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("HeadAccount: %v", err)
	}

	if n := srv.AuthCalls(config.AuthV1); n != 2 {
		t.Errorf("auth calls = %d, want 2", n)
	}
}

func TestClient_CheckHealth(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	ctx := context.Background()

	if _, err := c.PutContainer(ctx, "photos", nil); err != nil {
		t.Fatalf("PutContainer: %v", err)
	}

	h := c.CheckHealth(ctx)
	if h.Status != observability.HealthStatusUp {
		t.Fatalf("status = %s (%s), want up", h.Status, h.Message)
	}
	if h.Details["containers"] != "1" {
		t.Errorf("containers = %q, want 1", h.Details["containers"])
	}

	srv.FailNext(503)
	h = c.CheckHealth(ctx)
	if h.Status != observability.HealthStatusDown {
		t.Errorf("status = %s, want down", h.Status)
	}
	if h.Message == "" {
		t.Error("expected a message")
	}
}

func TestClient_TempURL(t *testing.T) {
	srv := newServer(t, swifttest.Config{TempURLKey: "s3cr3t"})
	now := time.Now()
	c := newClient(t, srv.OptionsV1(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := c.PutContainer(ctx, "docs", nil); err != nil {
		t.Fatalf("PutContainer: %v", err)
	}
	if _, err := c.PutObject(ctx, "docs", "report.txt", "quarterly", nil); err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	u, err := c.TempURL("docs", "report.txt")
	if err != nil {
		t.Fatalf("TempURL: %v", err)
	}
	resp, err := c.http.Do(ctx, httpRequest(u))
	if err != nil {
		t.Fatalf("GET temp URL: %v", err)
	}
	if resp.StatusCode != 200 || string(resp.Body) != "quarterly" {
		t.Errorf("temp URL GET = %d %q, want 200 quarterly", resp.StatusCode, resp.Body)
	}
}

func TestClient_TempURLKeyMissing(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())

	_, err := c.TempURL("docs", "report.txt")
	if !errors.HasCode(err, errors.ErrCodeTempURLKeyMissing) {
		t.Fatalf("expected TempURLKeyMissing, got %v", err)
	}
}

func TestClient_PublicURL(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())

	u, err := c.PublicURL("docs", "a/b.txt")
	if err != nil {
		t.Fatalf("PublicURL: %v", err)
	}
	if want := srv.StorageURL() + "/docs/a/b.txt"; u != want {
		t.Errorf("PublicURL = %q, want %q", u, want)
	}
}
