package page

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		name               string
		page, limit        int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, DefaultLimit},
		{"negative page", -3, 10, 1, 10},
		{"limit below min", 2, -5, 2, MinLimit},
		{"limit above max", 1, 500, 1, MaxLimit},
		{"in range untouched", 4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l := Clamp(tt.page, tt.limit)
			if p != tt.wantPage || l != tt.wantLimit {
				t.Errorf("Clamp(%d, %d) = %d, %d; want %d, %d", tt.page, tt.limit, p, l, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		want               Meta
	}{
		{
			"middle page", 2, 10, 35,
			Meta{Page: 2, Limit: 10, Total: 35, TotalPages: 4, HasNextPage: true, HasPrevPage: true},
		},
		{
			"first page", 1, 10, 35,
			Meta{Page: 1, Limit: 10, Total: 35, TotalPages: 4, HasNextPage: true, HasPrevPage: false},
		},
		{
			"last page", 4, 10, 35,
			Meta{Page: 4, Limit: 10, Total: 35, TotalPages: 4, HasNextPage: false, HasPrevPage: true},
		},
		{
			"empty result set", 1, 10, 0,
			Meta{Page: 1, Limit: 10, Total: 0, TotalPages: 0, HasNextPage: false, HasPrevPage: false},
		},
		{
			"exact multiple", 2, 10, 20,
			Meta{Page: 2, Limit: 10, Total: 20, TotalPages: 2, HasNextPage: false, HasPrevPage: true},
		},
		{
			"page past the end", 9, 10, 35,
			Meta{Page: 9, Limit: 10, Total: 35, TotalPages: 4, HasNextPage: false, HasPrevPage: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMeta(tt.page, tt.limit, tt.total); got != tt.want {
				t.Errorf("NewMeta = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 10); got != 0 {
		t.Errorf("Offset(1, 10) = %d, want 0", got)
	}
	if got := Offset(3, 25); got != 50 {
		t.Errorf("Offset(3, 25) = %d, want 50", got)
	}
}
