package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireOpsKey guards operational endpoints (metrics scrape, order feed)
// with a shared API key.
func RequireOpsKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("OPS_API_KEY")
		if expected == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OPS_API_KEY is not configured"})
			c.Abort()
			return
		}
		got := c.GetHeader("X-API-KEY")
		if got == "" {
			got = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
