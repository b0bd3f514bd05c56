package store

// Pagination bounds. Out-of-range requests are clamped rather than rejected
// so a stale client asking for an oversized page degrades gracefully.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination carries normalized paging parameters for list operations.
// Construct it with NewPagination; a zero Pagination would produce a
// zero-sized page.
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination normalizes raw page and pageSize values: non-positive values
// fall back to the defaults and pageSize is capped at MaxPageSize.
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Limit returns the SQL LIMIT value for the page.
func (p Pagination) Limit() int {
	return p.PageSize
}

// Offset returns the SQL OFFSET value for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns how many pages the given total row count spans.
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	pages := total / int64(p.PageSize)
	if total%int64(p.PageSize) != 0 {
		pages++
	}
	return int(pages)
}
