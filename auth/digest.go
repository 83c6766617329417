package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/kbukum/swiftkit/config"
)

// Digest returns a stable identity key for opts: the SHA-256 of every
// field that selects an identity, scope or endpoint. Secrets only enter
// the hash, so the digest can be used in shared cache keys.
func Digest(opts config.Options) string {
	fields := []struct{ name, value string }{
		{"auth_url", opts.AuthURL},
		{"auth_version", strconv.Itoa(opts.ResolvedAuthVersion())},
		{"username", opts.Username},
		{"api_key", opts.APIKey},
		{"password", opts.Password},
		{"tenant_name", opts.TenantName},
		{"access_key", opts.AccessKey},
		{"secret_key", opts.SecretKey},
		{"user_id", opts.UserID},
		{"token", opts.Token},
		{"user_domain", opts.UserDomain},
		{"user_domain_id", opts.UserDomainID},
		{"domain", opts.Domain},
		{"domain_id", opts.DomainID},
		{"domain_name", opts.DomainName},
		{"project_id", opts.ProjectID},
		{"project_name", opts.ProjectName},
		{"project_domain_name", opts.ProjectDomainName},
		{"project_domain_id", opts.ProjectDomainID},
		{"storage_url", opts.StorageURL},
		{"interface", opts.Interface},
	}

	h := sha256.New()
	for _, f := range fields {
		// length-prefixed so adjacent values cannot run together
		fmt.Fprintf(h, "%s=%d:%s\n", f.name, len(f.value), f.value)
	}
	return hex.EncodeToString(h.Sum(nil))
}
