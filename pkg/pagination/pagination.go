package pagination

const MaxPageSize = 500

type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to at least 1 and the page size to MaxPageSize.
// A page size of zero means everything.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 0 {
		p.PageSize = 0
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Params) CalculateOffsetLimit() (offset, limit int) {
	if p.PageSize == 0 {
		return 0, 0
	}
	offset = (p.Page - 1) * p.PageSize
	limit = p.PageSize
	return offset, limit
}

func (p Params) BuildMeta(totalItems int) Meta {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (totalItems + p.PageSize - 1) / p.PageSize
	} else if totalItems > 0 {
		totalPages = 1
	}
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of results along with where it sits in the full set
type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"pagination"`
}

func NewPage[T any](items []T, p Params, totalItems int) Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Page[T]{
		Items: items,
		Meta:  p.BuildMeta(totalItems),
	}
}
