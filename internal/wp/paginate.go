package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// PageError reports the page a chain stopped at. Pages before it were
// already handed to the merge callback.
type PageError struct {
	Route string
	Page  int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Route, e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Result summarizes one walked listing.
type Result struct {
	Pages      int  // page requests that succeeded
	TotalPages int  // last X-WP-TotalPages seen
	Records    int  // records decoded across all pages
	Stopped    bool // merge asked to stop before the last page
}

// FetchAll walks route page by page, starting at 1 with PerPage records per
// page, until the page count from X-WP-TotalPages is reached. Each page is
// merged before the next one is requested. A failed page ends the walk with
// a *PageError; earlier pages stay merged. merge returning false stops the
// walk early (the result is no longer wanted).
func FetchAll[T any](ctx context.Context, c *Client, route string, params url.Values, merge func(page int, records []T) bool) (Result, error) {
	res := Result{TotalPages: 1}

	for page := 1; page <= res.TotalPages; page++ {
		if err := ctx.Err(); err != nil {
			return res, &PageError{Route: route, Page: page, Err: err}
		}

		resp, err := c.getPage(ctx, route, params, page)
		if err != nil {
			return res, &PageError{Route: route, Page: page, Err: err}
		}

		var records []T
		if err := json.Unmarshal(resp.body, &records); err != nil {
			return res, &PageError{Route: route, Page: page, Err: fmt.Errorf("parse response: %w", err)}
		}

		res.Pages++
		res.Records += len(records)
		res.TotalPages = resp.totalPages

		if !merge(page, records) {
			res.Stopped = true
			return res, nil
		}
	}

	return res, nil
}
