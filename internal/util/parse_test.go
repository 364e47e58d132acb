package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePaginationDefaults(t *testing.T) {
	page, pageSize := ParsePagination(paginationContext(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)
}

func TestParsePaginationClamps(t *testing.T) {
	page, pageSize := ParsePagination(paginationContext("page=0&page_size=-5"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	page, pageSize = ParsePagination(paginationContext("page=3&page_size=500"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, pageSize)

	page, pageSize = ParsePagination(paginationContext("page=garbage&page_size=7"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 7, pageSize)
}
