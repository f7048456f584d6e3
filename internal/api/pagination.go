package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	// page*limit must fit in an int32 offset
	maxPage = math.MaxInt32 / maxLimit
)

// PaginationParams holds parsed pagination query parameters.
type PaginationParams struct {
	Page  int
	Limit int
}

// PaginationMeta describes where a page sits in the full result set.
type PaginationMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// ParsePagination extracts pagination parameters from the request.
// Defaults: page=1, limit=10. page must be within 1..maxPage and limit within 1..100;
// anything else is reported as a field error rather than clamped.
func ParsePagination(r *http.Request) (PaginationParams, map[string]string) {
	p := PaginationParams{
		Page:  defaultPage,
		Limit: defaultLimit,
	}
	errs := map[string]string{}

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPage {
			errs["page"] = fmt.Sprintf("must be an integer between 1 and %d", maxPage)
		} else {
			p.Page = n
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			errs["limit"] = "must be an integer between 1 and 100"
		} else {
			p.Limit = n
		}
	}

	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

// Offset returns the database offset for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages calculates the total number of pages for a given total count.
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	pages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		pages++
	}
	return pages
}

// Meta builds the pagination block for a result set of total rows.
func (p PaginationParams) Meta(total int64) PaginationMeta {
	return PaginationMeta{
		CurrentPage:  p.Page,
		TotalPages:   p.TotalPages(total),
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNextPage:  int64(p.Page)*int64(p.Limit) < total,
		HasPrevPage:  p.Page > 1,
	}
}
