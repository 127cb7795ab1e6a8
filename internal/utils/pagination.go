package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workstream/task-assignment-api/internal/constants"
)

// PaginationParams holds the requested page and page size.
type PaginationParams struct {
	Page    int
	PerPage int
}

// PaginationMeta is the pagination block attached to list responses.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
}

// GetPaginationParams extracts page and perPage from the query string.
// Out-of-range values fall back to the defaults; the page is clamped
// against the total count later, once it is known.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.DefaultPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(constants.DefaultPageSize)))

	if page < 1 {
		page = constants.DefaultPage
	}
	if perPage < 1 || perPage > constants.MaxPageSize {
		perPage = constants.DefaultPageSize
	}

	return PaginationParams{Page: page, PerPage: perPage}
}

// ClampPage folds an out-of-range page number back into [1, totalPages].
// An empty result set still reports page 1 of 1. Non-positive params fall
// back to the defaults so callers bypassing the query-string path cannot
// divide by zero.
func ClampPage(params PaginationParams, totalItems int64) (PaginationParams, PaginationMeta) {
	if params.PerPage < 1 {
		params.PerPage = constants.DefaultPageSize
	}
	if params.Page < 1 {
		params.Page = constants.DefaultPage
	}

	totalPages := int(totalItems) / params.PerPage
	if int(totalItems)%params.PerPage > 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	if params.Page > totalPages {
		params.Page = totalPages
	}

	return params, PaginationMeta{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
	}
}
