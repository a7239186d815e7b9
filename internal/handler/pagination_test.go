// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"testing"
)

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name        string
		currentPage int
		totalItems  int64
		perPage     int
		wantPages   int
		wantCurrent int
		wantPrev    bool
		wantNext    bool
	}{
		{"empty list", 1, 0, 12, 1, 1, false, false},
		{"single page", 1, 5, 12, 1, 1, false, false},
		{"first of many", 1, 30, 12, 3, 1, false, true},
		{"middle", 2, 30, 12, 3, 2, true, true},
		{"last", 3, 30, 12, 3, 3, true, false},
		{"page clamped high", 9, 30, 12, 3, 3, true, false},
		{"page clamped low", 0, 30, 12, 3, 1, false, true},
		{"exact fit", 2, 24, 12, 2, 2, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPagination(tt.currentPage, tt.totalItems, tt.perPage, "/gallery/nature", nil)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.CurrentPage != tt.wantCurrent {
				t.Errorf("CurrentPage = %d, want %d", p.CurrentPage, tt.wantCurrent)
			}
			if p.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", p.HasPrev, tt.wantPrev)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", p.HasNext, tt.wantNext)
			}
		})
	}
}

func TestPaginationPreservesQuery(t *testing.T) {
	params := url.Values{"days": {"7"}, "page": {"4"}}
	p := BuildPagination(2, 100, 20, "/admin/media", params)

	want := "/admin/media?days=7&page=3"
	if got := p.PageURL(3); got != want {
		t.Errorf("PageURL(3) = %q, want %q", got, want)
	}
}

func TestPaginationWindow(t *testing.T) {
	p := BuildPagination(10, 400, 12, "/gallery/nature", nil)

	if len(p.Pages) != 2*windowSize+1 {
		t.Fatalf("len(Pages) = %d, want %d", len(p.Pages), 2*windowSize+1)
	}
	if p.Pages[0].Number != 8 || p.Pages[len(p.Pages)-1].Number != 12 {
		t.Errorf("window = %d..%d, want 8..12", p.Pages[0].Number, p.Pages[len(p.Pages)-1].Number)
	}

	var current int
	for _, page := range p.Pages {
		if page.IsCurrent {
			current = page.Number
		}
	}
	if current != 10 {
		t.Errorf("current page in window = %d, want 10", current)
	}
}

func TestPageParam(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"7", 7},
	}

	for _, tt := range tests {
		values := url.Values{}
		if tt.raw != "" {
			values.Set("page", tt.raw)
		}
		if got := pageParam(values); got != tt.want {
			t.Errorf("pageParam(page=%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
