package swifttest

import (
	"bytes"
	"crypto/hmac"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/swiftkit/tempurl"
)

// recovery turns handler panics into 500s and logs the stack.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", err),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// transID stamps every response with X-Trans-Id, suffixed with the
// client's X-Trans-Id-Extra the way the real proxy does.
func transID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := "tx" + strings.ReplaceAll(uuid.NewString(), "-", "")
		if extra := c.GetHeader("X-Trans-Id-Extra"); extra != "" {
			id += "-" + extra
		}
		c.Header("X-Trans-Id", id)
		c.Header("X-Openstack-Request-Id", id)
		c.Next()
	}
}

// record buffers the request body and appends the request, with its final
// status, to the request log.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		c.Next()

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:           c.Request.Method,
			Path:             c.Request.URL.Path,
			RawQuery:         c.Request.URL.RawQuery,
			Header:           c.Request.Header.Clone(),
			TransferEncoding: c.Request.TransferEncoding,
			Body:             body,
			Status:           c.Writer.Status(),
		})
		s.mu.Unlock()
	}
}

// authorize applies injected failures, then accepts a valid temp URL or a
// live token.
func (s *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		if len(s.failures) > 0 {
			status := s.failures[0]
			s.failures = s.failures[1:]
			s.mu.Unlock()
			c.AbortWithStatus(status)
			return
		}
		s.mu.Unlock()

		if c.Query("temp_url_sig") != "" {
			if s.validTempURL(c) {
				c.Next()
				return
			}
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		ok := s.tokens[c.GetHeader("X-Auth-Token")]
		s.mu.Unlock()
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) validTempURL(c *gin.Context) bool {
	if s.cfg.TempURLKey == "" {
		return false
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return false
	}
	unix, err := strconv.ParseInt(c.Query("temp_url_expires"), 10, 64)
	if err != nil {
		return false
	}
	expires := time.Unix(unix, 0)
	if time.Now().After(expires) {
		return false
	}
	want, err := tempurl.Sign(c.Request.URL.Path, expires, s.cfg.TempURLKey)
	return err == nil && hmac.Equal([]byte(want), []byte(c.Query("temp_url_sig")))
}
