// internal/models/page.go
package models

type PageMeta struct {
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

type PageLinks struct {
	Next *string `json:"next,omitempty"`
	Prev *string `json:"prev,omitempty"`
}

// ListingPage is one page of a filtered listing query. It is replaced
// wholesale on each successful fetch; only the optimistic mutation layer may
// filter the displayed Data, and it never recomputes Meta locally.
type ListingPage struct {
	Data  []Listing `json:"data"`
	Meta  PageMeta  `json:"meta"`
	Links PageLinks `json:"links"`
}

// SearchQuery is the server-side view of one listing request: pagination,
// sort, free-text search term and the active filters.
type SearchQuery struct {
	Page    int
	Limit   int
	SortBy  string
	Search  string
	Filters FilterState
}
