package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronSecretMiddleware guards job-triggered endpoints. The shared secret is
// accepted from the X-Cron-Secret header or a secret query parameter, since
// some schedulers cannot set headers.
func CronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cron endpoints are disabled"})
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Cron-Secret")
		if provided == "" {
			provided = c.Query("secret")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid secret"})
			c.Abort()
			return
		}
		c.Next()
	}
}
