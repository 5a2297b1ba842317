// Package result holds the shaped output of a discovery request.
package result

import (
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/page"
)

// Page is a ranked result page: the items, pagination metadata, and
// the filters actually applied (echoed back for client-side state sync).
type Page struct {
	Items      []catalog.Item `json:"data"`
	Pagination page.Meta      `json:"pagination"`
	Filters    filter.Applied `json:"filters"`
}
