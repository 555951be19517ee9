// Package auth guards mutating dashboard endpoints with a static admin
// token. The guard is opt-in: deployments without ADMIN_TOKEN run open,
// matching the dashboard's single-operator origins.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenGuard enforces `Authorization: Bearer <token>` when token is
// non-empty; an empty token disables the guard.
func TokenGuard(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing admin token"})
			c.Abort()
			return
		}
		if strings.TrimPrefix(header, bearerPrefix) != token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid admin token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
