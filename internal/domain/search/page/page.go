// Package page computes pagination bounds and metadata.
package page

// Page size bounds. Out-of-range values are clamped, never rejected.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 10
)

// Clamp normalizes a requested page and limit to valid bounds.
// page is clamped to >= 1; limit to [MinLimit, MaxLimit], with zero
// meaning "use the default".
func Clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Meta describes a result page.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewMeta computes page metadata for a clamped page/limit and a total count.
func NewMeta(page, limit, total int) Meta {
	totalPages := (total + limit - 1) / limit
	return Meta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Offset returns the zero-based offset for a clamped page/limit.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
