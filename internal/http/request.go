package http

import (
	"net/http"
	"strconv"
	"strings"

	"salestats/internal/core"
)

// listParams holds the query string of a transaction listing.
type listParams struct {
	Month  string
	Search string
	Page   core.Page
}

// parseListParams reads month, search, page and perPage. Month and search are
// passed through verbatim.
func parseListParams(r *http.Request) listParams {
	q := r.URL.Query()
	return listParams{
		Month:  q.Get("month"),
		Search: q.Get("search"),
		Page:   core.ParsePage(q.Get("page"), q.Get("perPage")),
	}
}

func parseMonth(r *http.Request) string {
	return r.URL.Query().Get("month")
}

// parseAsync reports whether the caller asked for a queued load. Unparseable
// values mean false.
func parseAsync(r *http.Request) bool {
	v := strings.TrimSpace(r.URL.Query().Get("async"))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
