package auth

import (
	"context"
	"net/http"

	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/httpclient"
)

func (a *Authenticator) authenticateV1(ctx context.Context) (Session, error) {
	o := a.opts
	if err := requireFields(
		[2]string{"auth_url", o.AuthURL},
		[2]string{"username", o.Username},
		[2]string{"api_key", o.APIKey},
	); err != nil {
		return Session{}, err
	}

	resp, err := a.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    o.AuthURL,
		Headers: http.Header{
			"X-Auth-User": {o.Username},
			"X-Auth-Key":  {o.APIKey},
		},
	})
	if err != nil {
		return Session{}, errors.Authentication("identity request failed").WithCause(err)
	}
	if !resp.IsSuccess() {
		return Session{}, errors.AuthenticationStatus(resp.StatusCode, resp.Status)
	}

	token := resp.Headers.Get("X-Auth-Token")
	if token == "" {
		return Session{}, errors.Authentication("X-Auth-Token missing from response")
	}
	storageURL := o.StorageURL
	if storageURL == "" {
		storageURL = resp.Headers.Get("X-Storage-Url")
	}
	if storageURL == "" {
		return Session{}, errors.Authentication("storage_url missing")
	}
	return Session{Token: token, StorageURL: storageURL}, nil
}
