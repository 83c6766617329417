package httpclient

import (
	"fmt"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP transport.
type Config struct {
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent is sent unless a request sets its own User-Agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Transport overrides the round tripper. Nil uses a clone of http.DefaultTransport.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}
