package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/swiftkit/cache"
	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/httpclient"
	"github.com/kbukum/swiftkit/observability"
)

func newTransport(t *testing.T) *httpclient.Adapter {
	t.Helper()
	a, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return a
}

func newAuthenticator(t *testing.T, opts config.Options) *Authenticator {
	t.Helper()
	opts.ApplyDefaults()
	return New(opts, newTransport(t), nil)
}

func expectAuthError(t *testing.T, err error, contains string) {
	t.Helper()
	if !errors.HasCode(err, errors.ErrCodeAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if contains != "" && !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error to contain %q, got %q", contains, err.Error())
	}
}

// --- v1 ---

func v1Server(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("X-Auth-User") != "account:user" || r.Header.Get("X-Auth-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Auth-Token", "v1-token")
		w.Header().Set("X-Storage-Url", "https://storage.example.com/v1/AUTH_account")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticateV1(t *testing.T) {
	srv := v1Server(t, nil)
	a := newAuthenticator(t, config.Options{AuthURL: srv.URL + "/auth/v1.0", Username: "account:user", APIKey: "secret"})

	if a.Version() != config.AuthV1 {
		t.Fatalf("expected v1, got %d", a.Version())
	}
	sess, err := a.Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "v1-token" {
		t.Errorf("expected token v1-token, got %q", sess.Token)
	}
	if sess.StorageURL != "https://storage.example.com/v1/AUTH_account" {
		t.Errorf("unexpected storage url %q", sess.StorageURL)
	}
}

func TestAuthenticateV1_StorageURLOverride(t *testing.T) {
	srv := v1Server(t, nil)
	a := newAuthenticator(t, config.Options{
		AuthURL: srv.URL, Username: "account:user", APIKey: "secret",
		StorageURL: "https://override.example.com/v1/AUTH_x",
	})

	sess, err := a.Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.StorageURL != "https://override.example.com/v1/AUTH_x" {
		t.Errorf("expected override, got %q", sess.StorageURL)
	}
}

func TestAuthenticateV1_BadCredentials(t *testing.T) {
	srv := v1Server(t, nil)
	a := newAuthenticator(t, config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "wrong"})

	_, err := a.Authenticate(context.Background(), Session{})
	expectAuthError(t, err, "401: Unauthorized")
	if errors.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", errors.StatusCode(err))
	}
}

func TestAuthenticateV1_MissingFields(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)

	tests := []struct {
		name string
		opts config.Options
		want string
	}{
		{"username", config.Options{AuthURL: srv.URL, APIKey: "secret"}, "username missing"},
		{"api_key", config.Options{AuthURL: srv.URL, Username: "account:user"}, "api_key missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAuthenticator(t, tt.opts).Authenticate(context.Background(), Session{})
			expectAuthError(t, err, tt.want)
		})
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("expected no network calls, got %d", n)
	}
}

func TestAuthenticateV1_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newAuthenticator(t, config.Options{AuthURL: url, Username: "u", APIKey: "k"}).
		Authenticate(context.Background(), Session{})
	expectAuthError(t, err, "identity request failed")
	if !httpclient.IsConnection(err) {
		t.Errorf("expected connection cause, got %v", err)
	}
}

// --- v2 ---

func v2Server(t *testing.T, check func(body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2.0/tokens" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if check != nil {
			check(body)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access":{"token":{"id":"v2-token"}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticateV2_Password(t *testing.T) {
	srv := v2Server(t, func(body map[string]any) {
		auth := body["auth"].(map[string]any)
		if auth["tenantName"] != "tenant" {
			t.Errorf("expected tenantName, got %v", auth["tenantName"])
		}
		creds, ok := auth["passwordCredentials"].(map[string]any)
		if !ok || creds["username"] != "user" || creds["password"] != "pass" {
			t.Errorf("unexpected passwordCredentials %v", auth["passwordCredentials"])
		}
		if _, ok := auth["apiAccessKeyCredentials"]; ok {
			t.Error("did not expect apiAccessKeyCredentials")
		}
	})

	a := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v2.0/", TenantName: "tenant", Username: "user", Password: "pass",
		StorageURL: "https://storage.example.com/v1/AUTH_tenant",
	})
	if a.Version() != config.AuthV2 {
		t.Fatalf("expected v2, got %d", a.Version())
	}

	sess, err := a.Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "v2-token" || sess.StorageURL != "https://storage.example.com/v1/AUTH_tenant" {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestAuthenticateV2_AccessKey(t *testing.T) {
	srv := v2Server(t, func(body map[string]any) {
		auth := body["auth"].(map[string]any)
		creds, ok := auth["apiAccessKeyCredentials"].(map[string]any)
		if !ok || creds["accessKey"] != "ak" || creds["secretKey"] != "sk" {
			t.Errorf("unexpected apiAccessKeyCredentials %v", auth["apiAccessKeyCredentials"])
		}
	})

	sess, err := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v2.0", TenantName: "tenant", AccessKey: "ak", SecretKey: "sk",
		StorageURL: "https://storage.example.com/v1/AUTH_tenant",
	}).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "v2-token" {
		t.Errorf("expected v2-token, got %q", sess.Token)
	}
}

func TestAuthenticateV2_Errors(t *testing.T) {
	const authURL = "https://identity.example.com/v2.0"
	const storageURL = "https://storage.example.com/v1/AUTH_tenant"

	tests := []struct {
		name string
		opts config.Options
		want string
	}{
		{"storage url", config.Options{AuthURL: authURL, TenantName: "t", Username: "u", Password: "p"}, "storage_url missing"},
		{"tenant", config.Options{AuthURL: authURL, StorageURL: storageURL, Username: "u", Password: "p"}, "No tenant specified"},
		{"half password", config.Options{AuthURL: authURL, StorageURL: storageURL, TenantName: "t", Username: "u"}, "Unknown authentication method"},
		{"half access key", config.Options{AuthURL: authURL, StorageURL: storageURL, TenantName: "t", AccessKey: "ak"}, "Unknown authentication method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAuthenticator(t, tt.opts).Authenticate(context.Background(), Session{})
			expectAuthError(t, err, tt.want)
		})
	}
}

// --- v3 ---

func catalogJSON(services ...string) string {
	return fmt.Sprintf(`{"token":{"catalog":[%s]}}`, strings.Join(services, ","))
}

func objectStore(endpoints ...string) string {
	return fmt.Sprintf(`{"type":"object-store","name":"swift","endpoints":[%s]}`, strings.Join(endpoints, ","))
}

func endpoint(iface, url string) string {
	return fmt.Sprintf(`{"interface":%q,"region":"r1","url":%q}`, iface, url)
}

const identityService = `{"type":"identity","name":"keystone","endpoints":[{"interface":"public","url":"https://identity.example.com/v3"}]}`

func v3Server(t *testing.T, catalog string, check func(body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/auth/tokens" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if check != nil {
			check(body)
		}
		w.Header().Set("X-Subject-Token", "v3-token")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, catalog)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonPath(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[k]
	}
	return cur
}

func TestAuthenticateV3_PasswordByName(t *testing.T) {
	catalog := catalogJSON(identityService, objectStore(
		endpoint("public", "https://storage.example.com/v1/AUTH_p"),
		endpoint("internal", "http://10.0.0.1/v1/AUTH_p"),
	))
	srv := v3Server(t, catalog, func(body map[string]any) {
		if got := jsonPath(body, "auth", "identity", "methods"); fmt.Sprint(got) != "[password]" {
			t.Errorf("expected password method, got %v", got)
		}
		if got := jsonPath(body, "auth", "identity", "password", "user", "name"); got != "user" {
			t.Errorf("expected user name, got %v", got)
		}
		if got := jsonPath(body, "auth", "identity", "password", "user", "domain", "name"); got != "Default" {
			t.Errorf("expected user domain name, got %v", got)
		}
		if got := jsonPath(body, "auth", "scope", "project", "name"); got != "proj" {
			t.Errorf("expected project scope, got %v", got)
		}
		if got := jsonPath(body, "auth", "scope", "project", "domain", "id"); got != "default" {
			t.Errorf("expected project domain id, got %v", got)
		}
	})

	a := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v3/", Username: "user", Password: "pass", UserDomain: "Default",
		ProjectName: "proj", ProjectDomainID: "default",
	})
	if a.Version() != config.AuthV3 {
		t.Fatalf("expected v3, got %d", a.Version())
	}

	sess, err := a.Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "v3-token" {
		t.Errorf("expected v3-token, got %q", sess.Token)
	}
	if sess.StorageURL != "https://storage.example.com/v1/AUTH_p" {
		t.Errorf("expected public endpoint, got %q", sess.StorageURL)
	}
}

func TestAuthenticateV3_InternalInterface(t *testing.T) {
	catalog := catalogJSON(objectStore(
		endpoint("public", "https://storage.example.com/v1/AUTH_p"),
		endpoint("internal", "http://10.0.0.1/v1/AUTH_p"),
	))
	srv := v3Server(t, catalog, nil)

	sess, err := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v3", UserID: "uid", Password: "pass", Interface: config.InterfaceInternal,
	}).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.StorageURL != "http://10.0.0.1/v1/AUTH_p" {
		t.Errorf("expected internal endpoint, got %q", sess.StorageURL)
	}
}

func TestAuthenticateV3_IdentityMethods(t *testing.T) {
	catalog := catalogJSON(objectStore(endpoint("public", "https://storage.example.com/v1/AUTH_p")))

	tests := []struct {
		name  string
		opts  config.Options
		check func(t *testing.T, body map[string]any)
	}{
		{
			name: "user id",
			opts: config.Options{UserID: "uid", Password: "pass"},
			check: func(t *testing.T, body map[string]any) {
				if got := jsonPath(body, "auth", "identity", "password", "user", "id"); got != "uid" {
					t.Errorf("expected user id, got %v", got)
				}
			},
		},
		{
			name: "token",
			opts: config.Options{Token: "tok"},
			check: func(t *testing.T, body map[string]any) {
				if got := jsonPath(body, "auth", "identity", "methods"); fmt.Sprint(got) != "[token]" {
					t.Errorf("expected token method, got %v", got)
				}
				if got := jsonPath(body, "auth", "identity", "token", "id"); got != "tok" {
					t.Errorf("expected token id, got %v", got)
				}
			},
		},
		{
			name: "user domain id",
			opts: config.Options{Username: "user", Password: "pass", UserDomainID: "d1"},
			check: func(t *testing.T, body map[string]any) {
				if got := jsonPath(body, "auth", "identity", "password", "user", "domain", "id"); got != "d1" {
					t.Errorf("expected user domain id, got %v", got)
				}
			},
		},
		{
			name: "domain scope replaces project scope",
			opts: config.Options{
				UserID: "uid", Password: "pass",
				ProjectID: "pid", ProjectDomainName: "Default", DomainName: "dom",
			},
			check: func(t *testing.T, body map[string]any) {
				if got := jsonPath(body, "auth", "scope", "domain", "name"); got != "dom" {
					t.Errorf("expected domain scope, got %v", got)
				}
				if got := jsonPath(body, "auth", "scope", "project"); got != nil {
					t.Errorf("did not expect project scope, got %v", got)
				}
			},
		},
		{
			name: "project without domain is unscoped",
			opts: config.Options{UserID: "uid", Password: "pass", ProjectName: "proj"},
			check: func(t *testing.T, body map[string]any) {
				if got := jsonPath(body, "auth", "scope"); got != nil {
					t.Errorf("expected no scope, got %v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := v3Server(t, catalog, func(body map[string]any) { tt.check(t, body) })
			opts := tt.opts
			opts.AuthURL = srv.URL + "/v3"
			if _, err := newAuthenticator(t, opts).Authenticate(context.Background(), Session{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthenticateV3_Rejections(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		opts config.Options
		want string
	}{
		{"deprecated domain", config.Options{Username: "user", Password: "pass", Domain: "Default"}, "deprecated"},
		{"deprecated domain id", config.Options{Username: "user", Password: "pass", DomainID: "default"}, "deprecated"},
		{"username without domain", config.Options{Username: "user", Password: "pass"}, "Unknown authentication method"},
		{"nothing", config.Options{}, "Unknown authentication method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.AuthURL = srv.URL + "/v3"
			_, err := newAuthenticator(t, opts).Authenticate(context.Background(), Session{})
			expectAuthError(t, err, tt.want)
		})
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("expected no network calls, got %d", n)
	}
}

func TestAuthenticateV3_CatalogAmbiguity(t *testing.T) {
	pub := endpoint("public", "https://a.example.com/v1/AUTH_p")
	tests := []struct {
		name    string
		catalog string
	}{
		{"no object-store", catalogJSON(identityService)},
		{"two object-stores", catalogJSON(objectStore(pub), objectStore(pub))},
		{"no public endpoint", catalogJSON(objectStore(endpoint("internal", "http://10.0.0.1")))},
		{"two public endpoints", catalogJSON(objectStore(pub, endpoint("public", "https://b.example.com")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := v3Server(t, tt.catalog, nil)
			_, err := newAuthenticator(t, config.Options{AuthURL: srv.URL + "/v3", Token: "tok"}).
				Authenticate(context.Background(), Session{})
			expectAuthError(t, err, "expected exactly one")
		})
	}
}

func TestAuthenticateV3_StorageURLOverrideSkipsCatalog(t *testing.T) {
	srv := v3Server(t, catalogJSON(), nil)

	sess, err := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v3", Token: "tok", StorageURL: "https://storage.example.com/v1/AUTH_x",
	}).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.StorageURL != "https://storage.example.com/v1/AUTH_x" {
		t.Errorf("expected override, got %q", sess.StorageURL)
	}
}

func TestAuthenticate_ExplicitVersionWins(t *testing.T) {
	srv := v1Server(t, nil)
	// "v3" in the path would select protocol 3 by inference.
	a := newAuthenticator(t, config.Options{
		AuthURL: srv.URL + "/v3compat", AuthVersion: config.AuthV1,
		Username: "account:user", APIKey: "secret",
	})
	if _, err := a.Authenticate(context.Background(), Session{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- cache ---

func TestAuthenticate_CacheRoundTrip(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)
	store := cache.NewMemory()
	opts := config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: store}

	first, err := newAuthenticator(t, opts).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 cache keys, got %d", store.Len())
	}

	second, err := newAuthenticator(t, opts).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 network authentication, got %d", n)
	}
	if second != first {
		t.Errorf("expected cached session %+v, got %+v", first, second)
	}
}

func TestAuthenticate_CacheSkippedWhenTokenUnchanged(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)
	store := cache.NewMemory()
	opts := config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: store}
	a := newAuthenticator(t, opts)

	sess, err := a.Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The cached token is the one the caller already holds.
	if _, err := a.Authenticate(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 network authentications, got %d", n)
	}
}

func TestAuthenticate_CacheKeysUseDigest(t *testing.T) {
	srv := v1Server(t, nil)
	store := cache.NewMemory()
	opts := config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: store}
	a := newAuthenticator(t, opts)

	if _, err := a.Authenticate(context.Background(), Session{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, ok, _ := store.Get(context.Background(), "auth_token:"+a.Digest())
	if !ok || token != "v1-token" {
		t.Errorf("expected cached token, got %q (ok=%v)", token, ok)
	}
	url, ok, _ := store.Get(context.Background(), "storage_url:"+a.Digest())
	if !ok || url != "https://storage.example.com/v1/AUTH_account" {
		t.Errorf("expected cached storage url, got %q (ok=%v)", url, ok)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("connection refused")
}

func (failingStore) Set(context.Context, string, string) error {
	return fmt.Errorf("connection refused")
}

func TestAuthenticate_CacheFailuresFallBackToNetwork(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)

	sess, err := newAuthenticator(t, config.Options{
		AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: failingStore{},
	}).Authenticate(context.Background(), Session{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); sess.Token != "v1-token" || n != 1 {
		t.Errorf("expected network session, got %+v after %d calls", sess, n)
	}
}

func cacheLookups(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || m.Name != "swift.cache.lookups" {
				continue
			}
			for _, dp := range sum.DataPoints {
				result, _ := dp.Attributes.Value("result")
				got[result.AsString()] += dp.Value
			}
		}
	}
	return got
}

func TestAuthenticate_CacheFailuresAreCounted(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	opts := config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: failingStore{}}
	opts.ApplyDefaults()
	a := New(opts, newTransport(t), nil, WithMetrics(metrics))
	if _, err := a.Authenticate(context.Background(), Session{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := cacheLookups(t, reader)
	if got["error"] != 1 || got["hit"] != 0 {
		t.Errorf("cache lookups = %v, want one error", got)
	}
}

func TestAuthenticate_CacheLookupsCounted(t *testing.T) {
	var calls int32
	srv := v1Server(t, &calls)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	opts := config.Options{AuthURL: srv.URL, Username: "account:user", APIKey: "secret", Cache: cache.NewMemory()}
	opts.ApplyDefaults()
	first := New(opts, newTransport(t), nil, WithMetrics(metrics))
	second := New(opts, newTransport(t), nil, WithMetrics(metrics))
	if _, err := first.Authenticate(context.Background(), Session{}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := second.Authenticate(context.Background(), Session{}); err != nil {
		t.Fatalf("second: %v", err)
	}

	got := cacheLookups(t, reader)
	if got["miss"] != 1 || got["hit"] != 1 || got["error"] != 0 {
		t.Errorf("cache lookups = %v, want one miss and one hit", got)
	}
}

// --- digest ---

func TestDigest(t *testing.T) {
	base := config.Options{AuthURL: "https://identity.example.com/v3", Username: "a", Password: "p", UserDomain: "Default"}
	other := base
	other.Username = "b"
	scoped := base
	scoped.ProjectName = "proj"
	// Shifting characters between adjacent fields must not collide.
	shifted := base
	shifted.Username, shifted.Password = "ap", ""

	d := Digest(base)
	if len(d) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(d))
	}
	if Digest(base) != d {
		t.Error("expected stable digest")
	}
	for name, o := range map[string]config.Options{"user": other, "scope": scoped, "shifted": shifted} {
		if Digest(o) == d {
			t.Errorf("expected %s to change the digest", name)
		}
	}
}

func TestResolveStorageURL(t *testing.T) {
	catalog := []catalogEntry{
		{Type: "identity", Endpoints: []catalogEndpoint{{Interface: "public", URL: "https://id"}}},
		{Type: "object-store", Endpoints: []catalogEndpoint{
			{Interface: "public", URL: "https://pub"},
			{Interface: "admin", URL: "https://admin"},
		}},
	}
	got, err := resolveStorageURL(catalog, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://admin" {
		t.Errorf("expected admin endpoint, got %q", got)
	}

	_, err = resolveStorageURL(catalog, "internal")
	expectAuthError(t, err, "found 0 internal")
}
