package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list view can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs.
type Params struct {
	Page  int
	Limit int
}

// Meta mirrors the backend pagination block of list responses.
type Meta struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	return NormalizeLimitWith(limit, DefaultLimit, MaxLimit)
}

// NormalizeLimitWith is NormalizeLimit with configured bounds.
func NormalizeLimitWith(limit, def, max int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// NormalizePage clamps page numbers to start at 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Normalize applies both normalizations.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Offset returns the zero-based index of the first row of the page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageCount returns ceil(total/limit).
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewMeta builds the pagination block for a page of a result set.
func NewMeta(page, limit, total int) Meta {
	return Meta{Current: NormalizePage(page), Pages: PageCount(total, limit), Total: total}
}
