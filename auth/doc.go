// Package auth exchanges configured credentials for an auth token and a
// storage URL.
//
// Three identity protocols are supported:
//
//   - v1: GET {auth_url} with X-Auth-User/X-Auth-Key; token and storage URL
//     come back in the X-Auth-Token and X-Storage-Url headers.
//   - v2: POST {auth_url}/tokens with a tenant and password or access-key
//     credentials; the storage URL must be configured.
//   - v3: POST {auth_url}/auth/tokens with a password (by user name and
//     domain, or by user id) or token identity and an optional project or
//     domain scope; the storage URL is configured or resolved from the
//     service catalog.
//
// The protocol is chosen once by config.Options.ResolvedAuthVersion.
//
// Authenticate is the only transition of the session state. Before going to
// the network it consults the shared cache.Store; after a successful
// exchange it writes the result back so clients sharing the store converge:
//
//	a := auth.New(opts, transport, log)
//	sess, err := a.Authenticate(ctx, auth.Session{})
package auth
