package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParams_Defaults(t *testing.T) {
	params := paramsForQuery(t, "")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.PerPage)
}

func TestGetPaginationParams_Explicit(t *testing.T) {
	params := paramsForQuery(t, "page=3&perPage=25")
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.PerPage)
}

func TestGetPaginationParams_OutOfRange(t *testing.T) {
	params := paramsForQuery(t, "page=-1&perPage=9999")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.PerPage)

	params = paramsForQuery(t, "page=abc&perPage=0")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.PerPage)
}

func TestClampPage(t *testing.T) {
	params, meta := ClampPage(PaginationParams{Page: 1, PerPage: 10}, 25)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, int64(25), meta.TotalItems)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 1, meta.CurrentPage)

	// Out-of-range pages fold back to the last page
	params, meta = ClampPage(PaginationParams{Page: 9, PerPage: 10}, 25)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 3, meta.CurrentPage)

	// Empty result sets still report page 1 of 1
	params, meta = ClampPage(PaginationParams{Page: 5, PerPage: 10}, 0)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, int64(0), meta.TotalItems)
}

func TestClampPage_NonPositiveParams(t *testing.T) {
	// Callers bypassing GetPaginationParams must not divide by zero
	params, meta := ClampPage(PaginationParams{Page: 0, PerPage: 0}, 25)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.PerPage)
	assert.Equal(t, 3, meta.TotalPages)

	params, _ = ClampPage(PaginationParams{Page: -2, PerPage: -5}, 25)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.PerPage)
}
