package config

import (
	"strings"
	"time"

	"github.com/kbukum/swiftkit/cache"
)

// Protocol versions of the identity service.
const (
	AuthVersionAuto = 0
	AuthV1          = 1
	AuthV2          = 2
	AuthV3          = 3
)

// Endpoint interfaces of the v3 service catalog.
const (
	InterfacePublic   = "public"
	InterfaceInternal = "internal"
	InterfaceAdmin    = "admin"
)

const (
	defaultExpiresIn         = 3600 * time.Second
	defaultTimeout           = 30 * time.Second
	defaultBulkDeletePerPage = 1000
)

// Options configures a client. The identity fields that apply depend on the
// protocol version:
//
//	v1: Username, APIKey
//	v2: TenantName plus Username/Password or AccessKey/SecretKey; StorageURL required
//	v3: Username/Password with UserDomain or UserDomainID, UserID/Password, or Token;
//	    optional project scope (ProjectID|ProjectName with ProjectDomainName|ProjectDomainID)
//	    or domain scope (DomainName|DomainID)
type Options struct {
	AuthURL     string `yaml:"auth_url" mapstructure:"auth_url" validate:"omitempty,url"`
	AuthVersion int    `yaml:"auth_version" mapstructure:"auth_version" validate:"oneof=0 1 2 3"`

	Username string `yaml:"username" mapstructure:"username"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Password string `yaml:"password" mapstructure:"password"`

	TenantName string `yaml:"tenant_name" mapstructure:"tenant_name"`
	AccessKey  string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey  string `yaml:"secret_key" mapstructure:"secret_key"`

	UserID            string `yaml:"user_id" mapstructure:"user_id"`
	Token             string `yaml:"token" mapstructure:"token"`
	UserDomain        string `yaml:"user_domain" mapstructure:"user_domain"`
	UserDomainID      string `yaml:"user_domain_id" mapstructure:"user_domain_id"`
	Domain            string `yaml:"domain" mapstructure:"domain"`
	DomainID          string `yaml:"domain_id" mapstructure:"domain_id"`
	DomainName        string `yaml:"domain_name" mapstructure:"domain_name"`
	ProjectID         string `yaml:"project_id" mapstructure:"project_id"`
	ProjectName       string `yaml:"project_name" mapstructure:"project_name"`
	ProjectDomainName string `yaml:"project_domain_name" mapstructure:"project_domain_name"`
	ProjectDomainID   string `yaml:"project_domain_id" mapstructure:"project_domain_id"`

	// StorageURL overrides the storage endpoint advertised by the identity service.
	StorageURL string `yaml:"storage_url" mapstructure:"storage_url" validate:"omitempty,url"`
	// Interface filters v3 catalog endpoints. Defaults to "public".
	Interface string `yaml:"interface" mapstructure:"interface" validate:"omitempty,oneof=public internal admin"`

	// TempURLKey is the shared secret for temp URL signatures.
	TempURLKey string `yaml:"temp_url_key" mapstructure:"temp_url_key"`
	// ExpiresIn is the lifetime of generated temp URLs. Defaults to one hour.
	// Loaded configs may give it as a bare number of seconds.
	ExpiresIn time.Duration `yaml:"expires_in" mapstructure:"expires_in" validate:"gte=0"`

	// Timeout bounds every HTTP call. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// BulkDeletePerPage is the number of items per bulk-delete request, at most 1000.
	BulkDeletePerPage int `yaml:"bulk_delete_per_page" mapstructure:"bulk_delete_per_page" validate:"gte=0,lte=1000"`

	// Cache is the shared token store. Nil means no caching.
	Cache cache.Store `yaml:"-" mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (o *Options) ApplyDefaults() {
	if o.Interface == "" {
		o.Interface = InterfacePublic
	}
	if o.ExpiresIn == 0 {
		o.ExpiresIn = defaultExpiresIn
	}
	if o.Timeout == 0 {
		o.Timeout = defaultTimeout
	}
	if o.BulkDeletePerPage == 0 {
		o.BulkDeletePerPage = defaultBulkDeletePerPage
	}
	if o.Cache == nil {
		o.Cache = cache.Null{}
	}
}

// Validate checks option formats. It returns an OptionError and never
// touches the network. Missing credentials, auth_url included, are left to
// the authenticator, which reports them as "<field> missing".
func (o *Options) Validate() error {
	return validateStruct(o)
}

// ResolvedAuthVersion returns the protocol version to speak. An explicit
// AuthVersion wins; otherwise the auth URL is matched textually: "v3" selects
// protocol 3, "v2" protocol 2, anything else protocol 1. The textual match is
// a heuristic, so a URL such as ".../v20/" selects protocol 2.
func (o *Options) ResolvedAuthVersion() int {
	if o.AuthVersion != AuthVersionAuto {
		return o.AuthVersion
	}
	switch {
	case strings.Contains(o.AuthURL, "v3"):
		return AuthV3
	case strings.Contains(o.AuthURL, "v2"):
		return AuthV2
	default:
		return AuthV1
	}
}
