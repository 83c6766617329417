package swifttest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) authV1(c *gin.Context) {
	if c.GetHeader("X-Auth-User") != s.cfg.Username || c.GetHeader("X-Auth-Key") != s.cfg.APIKey {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	token := s.issueToken(1)
	c.Header("X-Auth-Token", token)
	c.Header("X-Storage-Token", token)
	c.Header("X-Storage-Url", s.StorageURL())
	c.Status(http.StatusNoContent)
}

type v2Body struct {
	Auth struct {
		TenantName          string `json:"tenantName"`
		PasswordCredentials *struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"passwordCredentials"`
		APIAccessKeyCredentials *struct {
			AccessKey string `json:"accessKey"`
			SecretKey string `json:"secretKey"`
		} `json:"apiAccessKeyCredentials"`
	} `json:"auth"`
}

func (s *Server) authV2(c *gin.Context) {
	var body v2Body
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := body.Auth
	valid := a.TenantName == s.cfg.TenantName
	switch {
	case a.PasswordCredentials != nil:
		valid = valid && a.PasswordCredentials.Username == s.cfg.Username && a.PasswordCredentials.Password == s.cfg.Password
	case a.APIAccessKeyCredentials != nil:
		valid = valid && a.APIAccessKeyCredentials.AccessKey == s.cfg.AccessKey && a.APIAccessKeyCredentials.SecretKey == s.cfg.SecretKey
	default:
		valid = false
	}
	if !valid {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access": gin.H{
			"token": gin.H{"id": s.issueToken(2), "tenant": gin.H{"name": a.TenantName}},
		},
	})
}

type v3Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type v3Body struct {
	Auth struct {
		Identity struct {
			Methods  []string `json:"methods"`
			Password *struct {
				User struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					Password string `json:"password"`
					Domain   *v3Ref `json:"domain"`
				} `json:"user"`
			} `json:"password"`
			Token *struct {
				ID string `json:"id"`
			} `json:"token"`
		} `json:"identity"`
	} `json:"auth"`
}

func (s *Server) authV3(c *gin.Context) {
	var body v3Body
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.validV3Identity(body) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	catalog := s.defaultCatalog(s.StorageURL())
	if s.cfg.Catalog != nil {
		catalog = s.cfg.Catalog(s.StorageURL())
	}
	c.Header("X-Subject-Token", s.issueToken(3))
	c.JSON(http.StatusCreated, gin.H{
		"token": gin.H{
			"methods": body.Auth.Identity.Methods,
			"catalog": catalog,
		},
	})
}

func (s *Server) validV3Identity(body v3Body) bool {
	id := body.Auth.Identity
	if len(id.Methods) != 1 {
		return false
	}
	switch id.Methods[0] {
	case "password":
		if id.Password == nil {
			return false
		}
		u := id.Password.User
		if u.Password != s.cfg.Password {
			return false
		}
		if u.ID != "" {
			return u.ID == s.cfg.UserID
		}
		return u.Name == s.cfg.Username && u.Domain != nil &&
			(u.Domain.Name == s.cfg.UserDomain || u.Domain.ID == s.cfg.UserDomain)
	case "token":
		return id.Token != nil && id.Token.ID == s.cfg.Token
	default:
		return false
	}
}

func (s *Server) defaultCatalog(storageURL string) []CatalogEntry {
	return []CatalogEntry{
		{
			Type: "identity", Name: "keystone",
			Endpoints: []Endpoint{{Interface: "public", Region: "RegionOne", URL: s.AuthURLV3()}},
		},
		{
			Type: "object-store", Name: "swift",
			Endpoints: []Endpoint{
				{Interface: "public", Region: "RegionOne", URL: storageURL},
				{Interface: "internal", Region: "RegionOne", URL: storageURL},
				{Interface: "admin", Region: "RegionOne", URL: s.URL() + "/v1"},
			},
		},
	}
}
