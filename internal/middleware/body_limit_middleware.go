package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyLimitSlack covers the JSON envelope around a base64 image.
const bodyLimitSlack = 64 << 10

// JSONBodyLimit returns the request body cap for an upload limit of maxUpload
// decoded bytes carried as a base64 data URI.
func JSONBodyLimit(maxUpload int64) int64 {
	return maxUpload/3*4 + 4 + bodyLimitSlack
}

// BodyLimitMiddleware caps how much of a request body handlers may read.
// Reads past the cap fail with *http.MaxBytesError.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
