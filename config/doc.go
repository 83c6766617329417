// Package config holds the option set of a swiftkit client and loads it from
// YAML files, .env files and the environment.
//
// Options are supplied once at construction and never change afterwards.
// The identity protocol is either set explicitly with AuthVersion or inferred
// from the auth URL:
//
//	opts := config.Options{
//	    AuthURL:    "https://identity.example.com/v3",
//	    Username:   "alice",
//	    Password:   "secret",
//	    UserDomain: "Default",
//	}
//	opts.ApplyDefaults()
//	if err := opts.Validate(); err != nil { ... }
//
// # Loading
//
//	var cfg struct {
//	    Swift config.Options `mapstructure:"swift"`
//	}
//	err := config.Load(&cfg, config.WithConfigFile("swiftkit.yml"))
//
// Environment variables override file values, with dots replaced by
// underscores (e.g. SWIFT_AUTH_URL for swift.auth_url).
package config
