package swift

import (
	"context"
	"mime"
	"net/http"
	"path"

	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/tempurl"
)

const defaultContentType = "application/octet-stream"

func objectPath(container, object string) (string, error) {
	if container == "" {
		return "", errors.EmptyName("container")
	}
	if object == "" {
		return "", errors.EmptyName("object")
	}
	return "/" + container + "/" + object, nil
}

// PutObject uploads body as container/object with chunked transfer
// encoding. Unless headers carry a Content-Type, it is derived from the
// object name's extension. body is nil, []byte, string or an io.ReadSeeker.
func (c *Client) PutObject(ctx context.Context, container, object string, body any, headers http.Header) (*Response, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}

	h := normalizeHeaders(headers)
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentTypeFor(object))
	}
	return c.Request(ctx, http.MethodPut, p, &RequestOptions{Headers: h, Body: body, Chunked: true})
}

// contentTypeFor looks up the MIME type of name's extension.
func contentTypeFor(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return defaultContentType
}

// PostObject updates object metadata (X-Object-Meta-* headers).
func (c *Client) PostObject(ctx context.Context, container, object string, headers http.Header) (*Response, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPost, p, &RequestOptions{Headers: headers})
}

// GetObject downloads an object into memory.
func (c *Client) GetObject(ctx context.Context, container, object string) (*Response, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodGet, p, nil)
}

// GetObjectStream opens an object for reading. The caller must close the
// response.
func (c *Client) GetObjectStream(ctx context.Context, container, object string) (*StreamResponse, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}
	return c.RequestStream(ctx, http.MethodGet, p, nil)
}

// HeadObject returns the object metadata.
func (c *Client) HeadObject(ctx context.Context, container, object string) (*Response, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodHead, p, nil)
}

// DeleteObject deletes an object.
func (c *Client) DeleteObject(ctx context.Context, container, object string) (*Response, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodDelete, p, nil)
}

// CopyObject copies srcContainer/srcObject to dstContainer/dstObject on the
// server side. headers may add or override metadata of the copy.
func (c *Client) CopyObject(ctx context.Context, srcContainer, srcObject, dstContainer, dstObject string, headers http.Header) (*Response, error) {
	src, err := objectPath(srcContainer, srcObject)
	if err != nil {
		return nil, err
	}
	dst, err := objectPath(dstContainer, dstObject)
	if err != nil {
		return nil, err
	}
	h := normalizeHeaders(headers)
	h.Set("X-Copy-From", src)
	return c.Request(ctx, http.MethodPut, dst, &RequestOptions{Headers: h})
}

// PublicURL returns the unsigned URL of an object.
func (c *Client) PublicURL(container, object string) (string, error) {
	p, err := objectPath(container, object)
	if err != nil {
		return "", err
	}
	return c.StorageURL() + p, nil
}

// TempURL returns a signed GET URL for an object that expires after
// Options.ExpiresIn. It fails with TempURLKeyMissing when no key is
// configured.
func (c *Client) TempURL(container, object string) (string, error) {
	if _, err := objectPath(container, object); err != nil {
		return "", err
	}
	if c.opts.TempURLKey == "" {
		return "", errors.TempURLKeyMissing()
	}
	expires := c.now().Add(c.opts.ExpiresIn)
	return tempurl.Generate(c.StorageURL(), container, object, c.opts.TempURLKey, expires)
}
