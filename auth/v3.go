package auth

import (
	"context"

	"github.com/kbukum/swiftkit/errors"
)

type v3Request struct {
	Auth v3Auth `json:"auth"`
}

type v3Auth struct {
	Identity v3Identity `json:"identity"`
	Scope    *v3Scope   `json:"scope,omitempty"`
}

type v3Identity struct {
	Methods  []string    `json:"methods"`
	Password *v3Password `json:"password,omitempty"`
	Token    *v3Token    `json:"token,omitempty"`
}

type v3Password struct {
	User v3User `json:"user"`
}

type v3User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
	Domain   *v3Ref `json:"domain,omitempty"`
}

type v3Token struct {
	ID string `json:"id"`
}

// v3Ref names a domain or project by id or by name.
type v3Ref struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Domain *v3Ref `json:"domain,omitempty"`
}

type v3Scope struct {
	Project *v3Ref `json:"project,omitempty"`
	Domain  *v3Ref `json:"domain,omitempty"`
}

type v3Response struct {
	Token struct {
		Catalog []catalogEntry `json:"catalog"`
	} `json:"token"`
}

func (a *Authenticator) authenticateV3(ctx context.Context) (Session, error) {
	o := a.opts
	if err := requireFields([2]string{"auth_url", o.AuthURL}); err != nil {
		return Session{}, err
	}

	identity, err := a.v3Identity()
	if err != nil {
		return Session{}, err
	}

	resp, err := a.postJSON(ctx, trimURL(o.AuthURL)+"/auth/tokens", v3Request{
		Auth: v3Auth{Identity: identity, Scope: a.v3Scope()},
	})
	if err != nil {
		return Session{}, err
	}

	token := resp.Headers.Get("X-Subject-Token")
	if token == "" {
		return Session{}, errors.Authentication("X-Subject-Token missing from response")
	}

	if o.StorageURL != "" {
		return Session{Token: token, StorageURL: o.StorageURL}, nil
	}

	var body v3Response
	if err := resp.JSON(&body); err != nil {
		return Session{}, errors.Authentication("invalid token response").WithCause(err)
	}
	storageURL, err := resolveStorageURL(body.Token.Catalog, o.Interface)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, StorageURL: storageURL}, nil
}

// v3Identity picks the identity method: user name in a user domain, then
// user id, then token.
func (a *Authenticator) v3Identity() (v3Identity, error) {
	o := a.opts
	hasUserDomain := o.UserDomain != "" || o.UserDomainID != ""

	if o.Username != "" && !hasUserDomain && (o.Domain != "" || o.DomainID != "") {
		return v3Identity{}, errors.Authentication(
			"username in combination with domain/domain_id is deprecated, please use user_domain/user_domain_id instead")
	}

	switch {
	case o.Username != "" && o.Password != "" && hasUserDomain:
		return v3Identity{
			Methods: []string{"password"},
			Password: &v3Password{User: v3User{
				Name:     o.Username,
				Password: o.Password,
				Domain:   ref(o.UserDomainID, o.UserDomain),
			}},
		}, nil
	case o.UserID != "" && o.Password != "":
		return v3Identity{
			Methods:  []string{"password"},
			Password: &v3Password{User: v3User{ID: o.UserID, Password: o.Password}},
		}, nil
	case o.Token != "":
		return v3Identity{
			Methods: []string{"token"},
			Token:   &v3Token{ID: o.Token},
		}, nil
	default:
		return v3Identity{}, errors.Authentication("Unknown authentication method")
	}
}

// v3Scope returns the project scope, or the domain scope when a domain is
// named; a domain scope replaces a project scope. Nil means unscoped.
func (a *Authenticator) v3Scope() *v3Scope {
	o := a.opts
	var scope *v3Scope

	hasProject := o.ProjectID != "" || o.ProjectName != ""
	hasProjectDomain := o.ProjectDomainID != "" || o.ProjectDomainName != ""
	if hasProject && hasProjectDomain {
		project := ref(o.ProjectID, o.ProjectName)
		project.Domain = ref(o.ProjectDomainID, o.ProjectDomainName)
		scope = &v3Scope{Project: project}
	}

	if o.DomainID != "" || o.DomainName != "" {
		scope = &v3Scope{Domain: ref(o.DomainID, o.DomainName)}
	}
	return scope
}

// ref prefers the id when both are set.
func ref(id, name string) *v3Ref {
	if id != "" {
		return &v3Ref{ID: id}
	}
	return &v3Ref{Name: name}
}
