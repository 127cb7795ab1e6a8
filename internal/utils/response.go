package utils

import "github.com/gin-gonic/gin"

// Respond writes the standard success envelope.
func Respond(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, gin.H{
		"status":  true,
		"message": message,
		"data":    data,
	})
}

// RespondPaged writes the success envelope with pagination metadata.
func RespondPaged(c *gin.Context, statusCode int, message string, data any, meta PaginationMeta) {
	c.JSON(statusCode, gin.H{
		"status":       true,
		"message":      message,
		"data":         data,
		"total_items":  meta.TotalItems,
		"total_pages":  meta.TotalPages,
		"current_page": meta.CurrentPage,
	})
}
