// Package request models a validated discovery request.
package request

import (
	"strings"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/page"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
)

// MaxQueryLength bounds the free-text query.
const MaxQueryLength = 256

// Request is a validated, normalized discovery request.
// Page and limit are clamped on construction; the sort key degrades
// to date desc when unrecognized.
type Request struct {
	query    string
	filters  filter.Raw
	sort     rank.Sort
	dir      rank.Direction
	page     int
	limit    int
	callerID string
}

// New validates and normalizes discovery parameters.
// requireQuery enforces a non-empty free-text query (the /search
// operation); listing passes false and treats the query as optional.
func New(
	query string,
	filters filter.Raw,
	sortBy, sortOrder string,
	pageNum, limit int,
	callerID string,
	requireQuery bool,
) (Request, error) {
	query = strings.TrimSpace(query)
	if requireQuery && query == "" {
		return Request{}, domain.NewFieldError("q", "is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewFieldError("q", "is too long")
	}

	sort, _ := rank.ParseSort(sortBy, query != "")
	dir := rank.ParseDirection(sortOrder)
	pageNum, limit = page.Clamp(pageNum, limit)

	return Request{
		query:    query,
		filters:  filters,
		sort:     sort,
		dir:      dir,
		page:     pageNum,
		limit:    limit,
		callerID: callerID,
	}, nil
}

// Query returns the free-text query ("" for plain listing).
func (r *Request) Query() string { return r.query }

// Filters returns the raw filter set.
func (r *Request) Filters() filter.Raw { return r.filters }

// Sort returns the ordering strategy.
func (r *Request) Sort() rank.Sort { return r.sort }

// Direction returns the sort direction.
func (r *Request) Direction() rank.Direction { return r.dir }

// Page returns the clamped page number (>= 1).
func (r *Request) Page() int { return r.page }

// Limit returns the clamped page size.
func (r *Request) Limit() int { return r.limit }

// CallerID returns the optional caller identity for attribution.
func (r *Request) CallerID() string { return r.callerID }
