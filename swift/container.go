package swift

import (
	"context"
	"iter"
	"net/http"

	"github.com/kbukum/swiftkit/errors"
)

func containerPath(container string) (string, error) {
	if container == "" {
		return "", errors.EmptyName("container")
	}
	return "/" + container, nil
}

// GetContainer returns the container listing with its metadata headers.
func (c *Client) GetContainer(ctx context.Context, container string, query map[string]string) (*Response, error) {
	path, err := containerPath(container)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodGet, path, &RequestOptions{Query: query})
}

// HeadContainer returns the container metadata.
func (c *Client) HeadContainer(ctx context.Context, container string) (*Response, error) {
	path, err := containerPath(container)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodHead, path, nil)
}

// PutContainer creates a container or updates its metadata.
func (c *Client) PutContainer(ctx context.Context, container string, headers http.Header) (*Response, error) {
	path, err := containerPath(container)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPut, path, &RequestOptions{Headers: headers})
}

// PostContainer updates container metadata.
func (c *Client) PostContainer(ctx context.Context, container string, headers http.Header) (*Response, error) {
	path, err := containerPath(container)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPost, path, &RequestOptions{Headers: headers})
}

// DeleteContainer deletes an empty container.
func (c *Client) DeleteContainer(ctx context.Context, container string) (*Response, error) {
	path, err := containerPath(container)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// GetObjects returns one page of the object listing of container.
func (c *Client) GetObjects(ctx context.Context, container string, query map[string]string) (*Response, error) {
	return c.GetContainer(ctx, container, query)
}

// PaginateObjects returns every page of the object listing of container.
func (c *Client) PaginateObjects(ctx context.Context, container string, query map[string]string) iter.Seq2[*Page, error] {
	return Paginate(ctx, c.objectLister(container), query)
}

// EachObjectPage calls fn for every page of the object listing of container.
func (c *Client) EachObjectPage(ctx context.Context, container string, query map[string]string, fn func(*Page) error) error {
	return EachPage(ctx, c.objectLister(container), query, fn)
}

func (c *Client) objectLister(container string) ListFunc {
	return func(ctx context.Context, query map[string]string) (*Response, error) {
		return c.GetObjects(ctx, container, query)
	}
}
