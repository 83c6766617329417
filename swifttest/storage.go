package swifttest

import (
	"crypto/md5" //nolint:gosec // etags are md5 by protocol
	"encoding/hex"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultListingLimit = 10000

type object struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
	meta        http.Header
}

type container struct {
	objects map[string]*object
	meta    http.Header
}

func (ct *container) bytesUsed() int {
	n := 0
	for _, o := range ct.objects {
		n += len(o.data)
	}
	return n
}

func (s *Server) storage(c *gin.Context) {
	rest := strings.TrimPrefix(c.Param("path"), "/")
	account, rest, _ := strings.Cut(rest, "/")
	if account != s.cfg.Account {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	containerName, objectName, _ := strings.Cut(rest, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case containerName == "":
		s.account(c)
	case objectName == "":
		s.container(c, containerName)
	default:
		s.object(c, containerName, objectName)
	}
}

// --- account ---

func (s *Server) account(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodHead, http.MethodGet:
		objects, bytes := 0, 0
		for _, ct := range s.containers {
			objects += len(ct.objects)
			bytes += ct.bytesUsed()
		}
		c.Header("X-Account-Container-Count", strconv.Itoa(len(s.containers)))
		c.Header("X-Account-Object-Count", strconv.Itoa(objects))
		c.Header("X-Account-Bytes-Used", strconv.Itoa(bytes))
		writeMeta(c, s.accountMeta)
		if c.Request.Method == http.MethodHead {
			c.Status(http.StatusNoContent)
			return
		}
		s.listContainers(c)
	case http.MethodPost:
		mergeMeta(s.accountMeta, c.Request.Header, "X-Account-Meta-")
		c.Status(http.StatusNoContent)
	case http.MethodDelete:
		if _, ok := c.GetQuery("bulk-delete"); ok {
			s.bulkDelete(c)
			return
		}
		c.Status(http.StatusMethodNotAllowed)
	default:
		c.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listContainers(c *gin.Context) {
	names := make([]string, 0, len(s.containers))
	for name := range s.containers {
		names = append(names, name)
	}
	names = page(c, names)

	entries := make([]gin.H, 0, len(names))
	for _, name := range names {
		ct := s.containers[name]
		entries = append(entries, gin.H{"name": name, "count": len(ct.objects), "bytes": ct.bytesUsed()})
	}
	writeListing(c, names, entries)
}

// --- container ---

func (s *Server) container(c *gin.Context, name string) {
	ct, exists := s.containers[name]

	if c.Request.Method == http.MethodPut {
		status := http.StatusAccepted
		if !exists {
			ct = &container{objects: make(map[string]*object), meta: make(http.Header)}
			s.containers[name] = ct
			status = http.StatusCreated
		}
		mergeMeta(ct.meta, c.Request.Header, "X-Container-Meta-")
		c.Status(status)
		return
	}

	if !exists {
		c.Status(http.StatusNotFound)
		return
	}

	switch c.Request.Method {
	case http.MethodHead, http.MethodGet:
		c.Header("X-Container-Object-Count", strconv.Itoa(len(ct.objects)))
		c.Header("X-Container-Bytes-Used", strconv.Itoa(ct.bytesUsed()))
		writeMeta(c, ct.meta)
		if c.Request.Method == http.MethodHead {
			c.Status(http.StatusNoContent)
			return
		}
		s.listObjects(c, ct)
	case http.MethodPost:
		mergeMeta(ct.meta, c.Request.Header, "X-Container-Meta-")
		c.Status(http.StatusNoContent)
	case http.MethodDelete:
		if len(ct.objects) > 0 {
			c.Status(http.StatusConflict)
			return
		}
		delete(s.containers, name)
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listObjects(c *gin.Context, ct *container) {
	names := make([]string, 0, len(ct.objects))
	for name := range ct.objects {
		names = append(names, name)
	}
	names = page(c, names)

	entries := make([]gin.H, 0, len(names))
	for _, name := range names {
		o := ct.objects[name]
		entries = append(entries, gin.H{
			"name":          name,
			"hash":          o.etag,
			"bytes":         len(o.data),
			"content_type":  o.contentType,
			"last_modified": o.modified.UTC().Format("2006-01-02T15:04:05.000000"),
		})
	}
	writeListing(c, names, entries)
}

// --- object ---

func (s *Server) object(c *gin.Context, containerName, name string) {
	ct, exists := s.containers[containerName]
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}

	if c.Request.Method == http.MethodPut {
		s.putObject(c, ct, name)
		return
	}

	o, ok := ct.objects[name]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	switch c.Request.Method {
	case http.MethodHead, http.MethodGet:
		c.Header("ETag", o.etag)
		c.Header("Last-Modified", o.modified.UTC().Format(http.TimeFormat))
		writeMeta(c, o.meta)
		if c.Request.Method == http.MethodHead {
			c.Header("Content-Type", o.contentType)
			c.Header("Content-Length", strconv.Itoa(len(o.data)))
			c.Status(http.StatusOK)
			return
		}
		c.Data(http.StatusOK, o.contentType, o.data)
	case http.MethodPost:
		o.meta = make(http.Header)
		mergeMeta(o.meta, c.Request.Header, "X-Object-Meta-")
		c.Status(http.StatusAccepted)
	case http.MethodDelete:
		delete(ct.objects, name)
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) putObject(c *gin.Context, ct *container, name string) {
	if from := c.GetHeader("X-Copy-From"); from != "" {
		srcContainer, srcObject, _ := strings.Cut(strings.TrimPrefix(from, "/"), "/")
		src, ok := s.containers[srcContainer]
		if !ok || src.objects[srcObject] == nil {
			c.Status(http.StatusNotFound)
			return
		}
		orig := src.objects[srcObject]
		cp := *orig
		cp.data = slices.Clone(orig.data)
		cp.modified = time.Now()
		cp.meta = orig.meta.Clone()
		mergeMeta(cp.meta, c.Request.Header, "X-Object-Meta-")
		ct.objects[name] = &cp
		c.Header("ETag", cp.etag)
		c.Status(http.StatusCreated)
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	sum := md5.Sum(data) //nolint:gosec // etags are md5 by protocol
	etag := hex.EncodeToString(sum[:])
	if want := c.GetHeader("ETag"); want != "" && want != etag {
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	o := &object{data: data, contentType: contentType, etag: etag, modified: time.Now(), meta: make(http.Header)}
	mergeMeta(o.meta, c.Request.Header, "X-Object-Meta-")
	ct.objects[name] = o

	c.Header("ETag", etag)
	c.Status(http.StatusCreated)
}

// --- bulk delete ---

func (s *Server) bulkDelete(c *gin.Context) {
	if !strings.HasPrefix(c.GetHeader("Content-Type"), "text/plain") {
		c.Status(http.StatusBadRequest)
		return
	}
	data, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	deleted, notFound := 0, 0
	errs := [][]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(line); err == nil {
			line = unescaped
		}
		containerName, objectName, _ := strings.Cut(strings.TrimPrefix(line, "/"), "/")
		ct, ok := s.containers[containerName]
		switch {
		case !ok:
			notFound++
		case objectName == "":
			if len(ct.objects) > 0 {
				errs = append(errs, []string{line, "409 Conflict"})
				continue
			}
			delete(s.containers, containerName)
			deleted++
		case ct.objects[objectName] == nil:
			notFound++
		default:
			delete(ct.objects, objectName)
			deleted++
		}
	}

	status := "200 OK"
	if len(errs) > 0 {
		status = "400 Bad Request"
	}
	c.JSON(http.StatusOK, gin.H{
		"Number Deleted":   deleted,
		"Number Not Found": notFound,
		"Response Status":  status,
		"Response Body":    "",
		"Errors":           errs,
	})
}

// --- helpers ---

// page sorts names and applies the prefix, marker and limit query parameters.
func page(c *gin.Context, names []string) []string {
	slices.Sort(names)

	prefix := c.Query("prefix")
	marker := c.Query("marker")
	limit := defaultListingLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l >= 0 {
		limit = l
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if len(out) >= limit {
			break
		}
		if !strings.HasPrefix(name, prefix) || (marker != "" && name <= marker) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func writeListing(c *gin.Context, names []string, entries []gin.H) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") || c.Query("format") == "json" {
		c.JSON(http.StatusOK, entries)
		return
	}
	if len(names) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.String(http.StatusOK, strings.Join(names, "\n")+"\n")
}

func mergeMeta(dst, src http.Header, prefix string) {
	for key, values := range src {
		if strings.HasPrefix(key, prefix) {
			dst[key] = slices.Clone(values)
		}
	}
}

func writeMeta(c *gin.Context, meta http.Header) {
	for key, values := range meta {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
}
