package auth

import (
	"context"

	"github.com/kbukum/swiftkit/errors"
)

type v2Request struct {
	Auth v2Auth `json:"auth"`
}

type v2Auth struct {
	TenantName              string                  `json:"tenantName"`
	PasswordCredentials     *v2PasswordCredentials  `json:"passwordCredentials,omitempty"`
	APIAccessKeyCredentials *v2AccessKeyCredentials `json:"apiAccessKeyCredentials,omitempty"`
}

type v2PasswordCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type v2AccessKeyCredentials struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

type v2Response struct {
	Access struct {
		Token struct {
			ID string `json:"id"`
		} `json:"token"`
	} `json:"access"`
}

// authenticateV2 never discovers the storage URL; it must be configured.
func (a *Authenticator) authenticateV2(ctx context.Context) (Session, error) {
	o := a.opts
	if err := requireFields(
		[2]string{"auth_url", o.AuthURL},
		[2]string{"storage_url", o.StorageURL},
	); err != nil {
		return Session{}, err
	}
	if o.TenantName == "" {
		return Session{}, errors.Authentication("No tenant specified")
	}

	req := v2Request{Auth: v2Auth{TenantName: o.TenantName}}
	switch {
	case o.Username != "" && o.Password != "":
		req.Auth.PasswordCredentials = &v2PasswordCredentials{Username: o.Username, Password: o.Password}
	case o.AccessKey != "" && o.SecretKey != "":
		req.Auth.APIAccessKeyCredentials = &v2AccessKeyCredentials{AccessKey: o.AccessKey, SecretKey: o.SecretKey}
	default:
		return Session{}, errors.Authentication("Unknown authentication method")
	}

	resp, err := a.postJSON(ctx, trimURL(o.AuthURL)+"/tokens", req)
	if err != nil {
		return Session{}, err
	}

	var body v2Response
	if err := resp.JSON(&body); err != nil {
		return Session{}, errors.Authentication("invalid token response").WithCause(err)
	}
	if body.Access.Token.ID == "" {
		return Session{}, errors.Authentication("access.token.id missing from response")
	}
	return Session{Token: body.Access.Token.ID, StorageURL: o.StorageURL}, nil
}
