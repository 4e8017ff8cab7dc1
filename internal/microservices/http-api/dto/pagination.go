package dto

import "yamdb/internal/microservices/http-api/repository"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps the offset of any page inside repository.MaxOffset
	MaxPage = repository.MaxOffset / MaxPageSize
)

// PageQuery is bound from ?page=&page_size=
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize clamps the query into a valid repository page.
func (q PageQuery) Normalize() repository.Page {
	page := repository.Page{Page: q.Page, PageSize: q.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Page > MaxPage {
		page.Page = MaxPage
	}
	if page.PageSize < 1 {
		page.PageSize = DefaultPageSize
	}
	if page.PageSize > MaxPageSize {
		page.PageSize = MaxPageSize
	}
	return page
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Paginated wraps one page of results
type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPaginated builds the list envelope; data is never serialized as null.
func NewPaginated[T any](data []T, total int64, page repository.Page) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := int(total / int64(page.PageSize))
	if total%int64(page.PageSize) != 0 {
		totalPages++
	}
	return &Paginated[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// MapSlice converts models to responses.
func MapSlice[M any, R any](items []M, convert func(*M) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}
