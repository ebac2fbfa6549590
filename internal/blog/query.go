package blog

import "inkwell/internal/models"

// Pagination defaults for post listings.
const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	MaxPageSize      = 100
	maxPageNumber    = 1_000_000
	recentPostsLimit = 10
)

// DefaultSearchLimit caps the number of search results when no limit is configured.
const DefaultSearchLimit = 200

// PageRequest is a normalized offset/limit request.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies defaults to non-positive values and caps the page
// size and page number.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > maxPageNumber {
		page = maxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PostPage is one page of published posts.
type PostPage struct {
	Posts      []models.Post
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// totalPages is ceil(total/limit); zero when there is nothing to show.
func totalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
