package swifttest

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Config holds the credentials the fake accepts.
type Config struct {
	// Account is the account segment of the storage URL. Defaults to "AUTH_test".
	Account string

	// v1
	Username string
	APIKey   string

	// v2 and v3
	Password   string
	TenantName string
	AccessKey  string
	SecretKey  string
	UserDomain string
	UserID     string
	Token      string

	// TempURLKey enables temp URL validation on object GETs.
	TempURLKey string

	// Catalog overrides the v3 service catalog. It receives the storage URL.
	Catalog func(storageURL string) []CatalogEntry
}

// ApplyDefaults fills in the default test credentials.
func (c *Config) ApplyDefaults() {
	set := func(field *string, v string) {
		if *field == "" {
			*field = v
		}
	}
	set(&c.Account, "AUTH_test")
	set(&c.Username, "tester")
	set(&c.APIKey, "testing")
	set(&c.Password, "testing")
	set(&c.TenantName, "test")
	set(&c.AccessKey, "access")
	set(&c.SecretKey, "secret")
	set(&c.UserDomain, "Default")
	set(&c.UserID, "u-tester")
	set(&c.Token, "static-token")
}

// CatalogEntry is a v3 service catalog entry.
type CatalogEntry struct {
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is a v3 catalog endpoint.
type Endpoint struct {
	Interface string `json:"interface"`
	Region    string `json:"region"`
	URL       string `json:"url"`
}

// RecordedRequest is a storage request as the fake received it.
type RecordedRequest struct {
	Method           string
	Path             string
	RawQuery         string
	Header           http.Header
	TransferEncoding []string
	Body             []byte
	Status           int
}

// Server is a running fake.
type Server struct {
	cfg    Config
	ts     *httptest.Server
	engine *gin.Engine
	log    *logger.Logger

	mu          sync.Mutex
	tokens      map[string]bool
	authCalls   map[int]int
	failures    []int
	requests    []RecordedRequest
	accountMeta http.Header
	containers  map[string]*container
}

// New starts a fake. A nil log discards output.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		cfg:         cfg,
		log:         log.WithComponent("swifttest"),
		tokens:      make(map[string]bool),
		authCalls:   make(map[int]int),
		accountMeta: make(http.Header),
		containers:  make(map[string]*container),
	}

	engine := gin.New()
	engine.Use(s.recovery(), transID())
	engine.GET("/auth/v1.0", s.authV1)
	engine.POST("/v2.0/tokens", s.authV2)
	engine.POST("/v3/auth/tokens", s.authV3)
	engine.Any("/v1/*path", s.record(), s.authorize(), s.storage)
	s.engine = engine

	s.ts = httptest.NewServer(engine)
	return s
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.ts.Close()
}

// URL is the base URL of the fake.
func (s *Server) URL() string { return s.ts.URL }

// AuthURLV1 is the v1 identity endpoint.
func (s *Server) AuthURLV1() string { return s.ts.URL + "/auth/v1.0" }

// AuthURLV2 is the v2 identity endpoint.
func (s *Server) AuthURLV2() string { return s.ts.URL + "/v2.0" }

// AuthURLV3 is the v3 identity endpoint.
func (s *Server) AuthURLV3() string { return s.ts.URL + "/v3" }

// StorageURL is the account URL handed out by the identity endpoints.
func (s *Server) StorageURL() string { return s.ts.URL + "/v1/" + s.cfg.Account }

// OptionsV1 returns client options that authenticate with protocol 1.
func (s *Server) OptionsV1() config.Options {
	return config.Options{AuthURL: s.AuthURLV1(), Username: s.cfg.Username, APIKey: s.cfg.APIKey, TempURLKey: s.cfg.TempURLKey}
}

// OptionsV2 returns client options that authenticate with protocol 2.
func (s *Server) OptionsV2() config.Options {
	return config.Options{
		AuthURL: s.AuthURLV2(), StorageURL: s.StorageURL(),
		TenantName: s.cfg.TenantName, Username: s.cfg.Username, Password: s.cfg.Password,
		TempURLKey: s.cfg.TempURLKey,
	}
}

// OptionsV3 returns client options that authenticate with protocol 3 by
// user name and domain.
func (s *Server) OptionsV3() config.Options {
	return config.Options{
		AuthURL: s.AuthURLV3(), Username: s.cfg.Username, Password: s.cfg.Password,
		UserDomain: s.cfg.UserDomain, TempURLKey: s.cfg.TempURLKey,
	}
}

// ExpireTokens invalidates every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]bool)
}

// FailNext makes the next storage requests answer with the given statuses,
// one per request, before any other handling.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// AuthCalls returns the number of successful authentications per protocol
// version. Version 0 holds the total.
func (s *Server) AuthCalls(version int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version == 0 {
		total := 0
		for _, n := range s.authCalls {
			total += n
		}
		return total
	}
	return s.authCalls[version]
}

// Requests returns the storage requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// ResetRequests forgets the recorded storage requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// issueToken registers a fresh token. The caller holds no lock.
func (s *Server) issueToken(version int) string {
	token := "tk_" + uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = true
	s.authCalls[version]++
	s.mu.Unlock()
	return token
}
