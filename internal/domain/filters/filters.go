package filters

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 24
	MaxLimit     = 100
)

// Pagination is a normalized page request. Use NewPagination to build one.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination replaces a missing or invalid page with 1 and a missing or
// invalid limit with DefaultLimit. Limit is capped at MaxLimit and page is
// capped so that Offset does not overflow.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Pagination) TotalPages(totalRecords int) int {
	if totalRecords <= 0 || p.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalRecords) / float64(p.Limit)))
}

// MovieFilter is a conjunction of optional predicates. Zero value matches every movie.
type MovieFilter struct {
	// Case insensitive substring of the title or of any genre.
	Query string
	// Any overlap with the movie genres.
	Genres   []string
	Status   string
	Featured *bool
	Pinned   *bool
}

func Bool(b bool) *bool {
	return &b
}
