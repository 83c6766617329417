package swift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
)

// ListFunc fetches one listing page for query.
type ListFunc func(ctx context.Context, query map[string]string) (*Response, error)

// Entry is one element of a JSON listing.
type Entry map[string]any

// Name returns the entry's name, or its subdir for delimiter listings.
func (e Entry) Name() string {
	if name, ok := e["name"].(string); ok {
		return name
	}
	subdir, _ := e["subdir"].(string)
	return subdir
}

// Page is one listing response and its decoded entries.
type Page struct {
	Response *Response
	Entries  []Entry
}

// ContainerInfo is a container in an account listing.
type ContainerInfo struct {
	Name         string `json:"name"`
	Count        int64  `json:"count"`
	Bytes        int64  `json:"bytes"`
	LastModified string `json:"last_modified,omitempty"`
}

// ObjectInfo is an object (or pseudo-directory) in a container listing.
type ObjectInfo struct {
	Name         string `json:"name,omitempty"`
	Subdir       string `json:"subdir,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Bytes        int64  `json:"bytes"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Containers decodes the page as an account listing.
func (p *Page) Containers() ([]ContainerInfo, error) {
	var out []ContainerInfo
	if err := decodeListing(p.Response, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Objects decodes the page as a container listing.
func (p *Page) Objects() ([]ObjectInfo, error) {
	var out []ObjectInfo
	if err := decodeListing(p.Response, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var errStopped = errors.New("swift: pagination stopped")

// Paginate returns the pages of a listing, starting from query. The marker
// of each request is the name of the last entry of the previous page; the
// sequence ends at the first empty page or at the first error, which is
// yielded once. query is never modified, so the sequence can be ranged
// over again.
func Paginate(ctx context.Context, list ListFunc, query map[string]string) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		err := walk(ctx, list, query, func(p *Page) error {
			if !yield(p, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && err != errStopped {
			yield(nil, err)
		}
	}
}

// EachPage calls fn for every page of a listing. It stops at the first
// error returned by the listing or by fn.
func EachPage(ctx context.Context, list ListFunc, query map[string]string, fn func(*Page) error) error {
	return walk(ctx, list, query, fn)
}

func walk(ctx context.Context, list ListFunc, query map[string]string, fn func(*Page) error) error {
	marker := ""
	for {
		q := maps.Clone(query)
		if q == nil {
			q = make(map[string]string, 1)
		}
		if marker != "" {
			q["marker"] = marker
		}

		resp, err := list(ctx, q)
		if err != nil {
			return err
		}
		var entries []Entry
		if err := decodeListing(resp, &entries); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := fn(&Page{Response: resp, Entries: entries}); err != nil {
			return err
		}

		next := entries[len(entries)-1].Name()
		if next == "" {
			return fmt.Errorf("swift: listing entry without a name after marker %q", marker)
		}
		marker = next
	}
}

// decodeListing decodes a JSON listing. An empty body is an empty listing.
func decodeListing(resp *Response, v any) error {
	if resp == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("swift: decode listing: %w", err)
	}
	return nil
}
