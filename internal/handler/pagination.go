// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
	"strconv"
)

// Pagination holds page navigation data for list templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Pages       []PaginationPage
	BaseURL     string
	QueryString string
}

// PaginationPage is a single page link.
type PaginationPage struct {
	Number    int
	URL       string
	IsCurrent bool
}

// windowSize is how many page links render on each side of the
// current page.
const windowSize = 2

// BuildPagination creates pagination data for list templates. baseURL
// is the path without a query string; queryParams are preserved on
// every page link, minus any page parameter.
func BuildPagination(currentPage int, totalItems int64, perPage int, baseURL string, queryParams url.Values) Pagination {
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage - 1,
		NextPage:    currentPage + 1,
		BaseURL:     baseURL,
	}

	if queryParams != nil {
		params := make(url.Values)
		for k, v := range queryParams {
			if k != "page" && len(v) > 0 && v[0] != "" {
				params[k] = v
			}
		}
		if len(params) > 0 {
			p.QueryString = params.Encode()
		}
	}

	start := currentPage - windowSize
	if start < 1 {
		start = 1
	}
	end := currentPage + windowSize
	if end > totalPages {
		end = totalPages
	}
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, PaginationPage{
			Number:    i,
			URL:       p.PageURL(i),
			IsCurrent: i == currentPage,
		})
	}

	return p
}

// PageURL returns the link for the given page number.
func (p Pagination) PageURL(page int) string {
	if p.QueryString != "" {
		return fmt.Sprintf("%s?%s&page=%d", p.BaseURL, p.QueryString, page)
	}
	return fmt.Sprintf("%s?page=%d", p.BaseURL, page)
}

// pageParam reads a positive page number from query values, defaulting
// to 1.
func pageParam(values url.Values) int {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
