// Package paging turns page/per_page query values into bounded repo pages.
package paging

import "github.com/Alijeyrad/pms_backend/internal/repo"

type Result[T any] struct {
	Data       []T `json:"results"`
	Total      int `json:"count"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Params are the requested page (1-based) and page size.
type Params struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// Normalize clamps p: page defaults to 1, per-page to def and at most max.
func (p Params) Normalize(def, max int) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = def
	}
	if max > 0 && p.PerPage > max {
		p.PerPage = max
	}
	return p
}

// Repo converts normalized params to a limit/offset page.
func (p Params) Repo() repo.Page {
	return repo.Page{Limit: p.PerPage, Offset: (p.Page - 1) * p.PerPage}
}

func NewResult[T any](data []T, total int, p Params) *Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if p.PerPage > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	return &Result[T]{Data: data, Total: total, Page: p.Page, PerPage: p.PerPage, TotalPages: pages}
}
