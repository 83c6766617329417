package swift

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/logger"
)

// maxBulkDeletePerRequest is the largest slice one bulk delete may carry.
const maxBulkDeletePerRequest = 1000

// BulkDeleteResult sums the per-request results of a bulk delete.
type BulkDeleteResult struct {
	Deleted  int
	NotFound int
	Errors   [][]string
	Requests int
}

// bulkDeletePage is the JSON body of one bulk delete. The HTTP status is
// 200 even when the slice was rejected; the outcome is ResponseStatus.
type bulkDeletePage struct {
	Deleted        int        `json:"Number Deleted"`
	NotFound       int        `json:"Number Not Found"`
	ResponseStatus string     `json:"Response Status"`
	ResponseBody   string     `json:"Response Body"`
	Errors         [][]string `json:"Errors"`
}

// status splits ResponseStatus ("400 Bad Request") into code and text. An
// absent or unparsable status counts as 200.
func (p bulkDeletePage) status() (int, string) {
	code, text, _ := strings.Cut(strings.TrimSpace(p.ResponseStatus), " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return http.StatusOK, ""
	}
	return n, text
}

// BulkDelete deletes items, each "container/object" or "container", in
// slices of at most Options.BulkDeletePerPage (itself capped at 1000), one
// request per slice. A slice the server rejects stops the run with a
// ResponseError; the result then holds the counts up to and including
// that slice.
func (c *Client) BulkDelete(ctx context.Context, items []string) (*BulkDeleteResult, error) {
	perPage := c.opts.BulkDeletePerPage
	if perPage <= 0 || perPage > maxBulkDeletePerRequest {
		perPage = maxBulkDeletePerRequest
	}

	result := &BulkDeleteResult{}
	for start := 0; start < len(items); start += perPage {
		end := min(start+perPage, len(items))
		resp, err := c.Request(ctx, http.MethodDelete, "/?bulk-delete", &RequestOptions{
			Headers: http.Header{"Content-Type": {"text/plain"}},
			Body:    strings.Join(items[start:end], "\n"),
		})
		if err != nil {
			return result, err
		}
		result.Requests++

		var page bulkDeletePage
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			c.log.Debug("bulk delete response is not JSON", logger.ErrorFields("bulk_delete", err))
			continue
		}
		result.Deleted += page.Deleted
		result.NotFound += page.NotFound
		result.Errors = append(result.Errors, page.Errors...)

		if status, text := page.status(); status < 200 || status >= 300 {
			respErr := errors.Response(status, text)
			if page.ResponseBody != "" {
				respErr = respErr.WithDetail("body", page.ResponseBody)
			}
			c.log.Warn("bulk delete rejected", logger.Fields(
				logger.FieldStatus, status,
				logger.FieldTransID, resp.Headers.Get("X-Trans-Id"),
				"errors", len(page.Errors),
			))
			return result, respErr
		}
	}
	return result, nil
}
