package auth

// Session is the credential state of a client: the bearer token and the
// base URL of the account.
type Session struct {
	Token      string
	StorageURL string
}

// IsZero reports whether the session has never been authenticated.
func (s Session) IsZero() bool {
	return s.Token == "" && s.StorageURL == ""
}
