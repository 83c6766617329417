package swift

import (
	"context"
	"iter"
	"net/http"
)

// HeadAccount returns the account metadata.
func (c *Client) HeadAccount(ctx context.Context) (*Response, error) {
	return c.Request(ctx, http.MethodHead, "/", nil)
}

// PostAccount updates account metadata (X-Account-Meta-* headers).
func (c *Client) PostAccount(ctx context.Context, headers http.Header) (*Response, error) {
	return c.Request(ctx, http.MethodPost, "/", &RequestOptions{Headers: headers})
}

// HeadContainers is HeadAccount; the account is the container collection.
func (c *Client) HeadContainers(ctx context.Context) (*Response, error) {
	return c.Request(ctx, http.MethodHead, "/", nil)
}

// GetContainers returns one page of the container listing.
func (c *Client) GetContainers(ctx context.Context, query map[string]string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, "/", &RequestOptions{Query: query})
}

// PaginateContainers returns every page of the container listing.
func (c *Client) PaginateContainers(ctx context.Context, query map[string]string) iter.Seq2[*Page, error] {
	return Paginate(ctx, c.GetContainers, query)
}

// EachContainerPage calls fn for every page of the container listing.
func (c *Client) EachContainerPage(ctx context.Context, query map[string]string, fn func(*Page) error) error {
	return EachPage(ctx, c.GetContainers, query, fn)
}
