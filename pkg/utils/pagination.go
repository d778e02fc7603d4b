package utils

// Page is a sanitized pagination request.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps the request: page >= 1, size within [1,100], defaulting
// to 20. Out-of-range values are clamped, never rejected.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the row offset for a normalized page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo is the pagination envelope returned with list responses.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPageInfo computes the envelope for a normalized page and total count.
func NewPageInfo(p Page, total int) PageInfo {
	pages := 0
	if total > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageInfo{Page: p.Number, Limit: p.Size, Total: total, Pages: pages}
}
