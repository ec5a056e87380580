package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers form boundaries and part headers on uploads.
var multipartOverhead = int64(8 * 1024)

// SizeLimit caps the request body at maxBodyBytes. Reading past the cap makes
// the body return http.MaxBytesError, which the upload handlers answer with
// 413 Request Entity Too Large.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes+multipartOverhead)
		c.Next()
	}
}
