package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "valid values pass through",
			page:         3,
			pageSize:     50,
			wantPage:     3,
			wantPageSize: 50,
		},
		{
			name:         "zero values fall back to defaults",
			page:         0,
			pageSize:     0,
			wantPage:     DefaultPage,
			wantPageSize: DefaultPageSize,
		},
		{
			name:         "negative values fall back to defaults",
			page:         -5,
			pageSize:     -10,
			wantPage:     DefaultPage,
			wantPageSize: DefaultPageSize,
		},
		{
			name:         "oversized page size is capped",
			page:         1,
			pageSize:     5000,
			wantPage:     1,
			wantPageSize: MaxPageSize,
		},
		{
			name:         "page size at cap is unchanged",
			page:         2,
			pageSize:     MaxPageSize,
			wantPage:     2,
			wantPageSize: MaxPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestPaginationLimitOffset(t *testing.T) {
	t.Parallel()

	p := NewPagination(1, 20)
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 25)
	assert.Equal(t, 25, p.Limit())
	assert.Equal(t, 50, p.Offset())
}

func TestPaginationTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pageSize int
		total    int64
		want     int
	}{
		{name: "exact multiple", pageSize: 20, total: 40, want: 2},
		{name: "partial last page", pageSize: 20, total: 41, want: 3},
		{name: "fewer rows than one page", pageSize: 20, total: 5, want: 1},
		{name: "zero rows", pageSize: 20, total: 0, want: 0},
		{name: "negative total", pageSize: 20, total: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPagination(1, tt.pageSize)
			assert.Equal(t, tt.want, p.TotalPages(tt.total))
		})
	}
}
