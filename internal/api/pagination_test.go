package api

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErrs  []string
	}{
		{"defaults", "", 1, 10, nil},
		{"explicit values", "?page=3&limit=25", 3, 25, nil},
		{"max limit", "?limit=100", 1, 100, nil},
		{"limit over max", "?limit=101", 1, 10, []string{"limit"}},
		{"zero limit", "?limit=0", 1, 10, []string{"limit"}},
		{"zero page", "?page=0", 1, 10, []string{"page"}},
		{"negative page", "?page=-2", 1, 10, []string{"page"}},
		{"largest page", "?page=21474836&limit=100", 21474836, 100, nil},
		{"page above max", "?page=21474837", 1, 10, []string{"page"}},
		{"page beyond int64", "?page=9223372036854775808", 1, 10, []string{"page"}},
		{"max int64 page", "?page=9223372036854775807&limit=10", 1, 10, []string{"page"}},
		{"non-numeric", "?page=abc&limit=xyz", 1, 10, []string{"page", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/devices"+tt.query, nil)
			p, errs := ParsePagination(r)

			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", p.Limit, tt.wantLimit)
			}
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("errs = %v, want keys %v", errs, tt.wantErrs)
			}
			for _, k := range tt.wantErrs {
				if _, ok := errs[k]; !ok {
					t.Errorf("expected error for %q, got %v", k, errs)
				}
			}
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 10, 20},
		{5, 25, 100},
		{maxPage, maxLimit, (maxPage - 1) * maxLimit},
	}
	for _, tt := range tests {
		p := PaginationParams{Page: tt.page, Limit: tt.limit}
		if got := p.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}

func TestPaginationParams_Meta(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		total     int64
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty result", 1, 0, 0, false, false},
		{"single partial page", 1, 7, 1, false, false},
		{"exact multiple", 1, 20, 2, true, false},
		{"last partial page", 3, 23, 3, false, true},
		{"beyond last page", 4, 23, 3, false, true},
		{"largest page", maxPage, 1, 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := PaginationParams{Page: tt.page, Limit: 10}.Meta(tt.total)
			if m.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", m.TotalPages, tt.wantPages)
			}
			if m.HasNextPage != tt.wantNext {
				t.Errorf("HasNextPage = %v, want %v", m.HasNextPage, tt.wantNext)
			}
			if m.HasPrevPage != tt.wantPrev {
				t.Errorf("HasPrevPage = %v, want %v", m.HasPrevPage, tt.wantPrev)
			}
			if m.CurrentPage != tt.page || m.ItemsPerPage != 10 || m.TotalItems != tt.total {
				t.Errorf("unexpected meta %+v", m)
			}
		})
	}
}
