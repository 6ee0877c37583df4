package pagination

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 15
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds page-based pagination inputs from controllers.
type Params struct {
	Page    int
	PerPage int
}

// Meta is the pagination block returned inside the response envelope.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Normalize clamps the params into valid ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// NewMeta builds the response metadata for a total row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	last := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 || last == 0 {
		last++
	}
	return Meta{
		CurrentPage: n.Page,
		PerPage:     n.PerPage,
		Total:       total,
		LastPage:    last,
	}
}
